package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/javiermontes/mma-portal/internal/api"
)

// ErrValidation is returned by Submit when the local pre-submit check failed
// and no network call was made.
var ErrValidation = errors.New("el formulario contiene errores")

const (
	msgFixForm   = "Por favor, corrige los errores en el formulario."
	msgSaveError = "Error en la operación de guardado"
	msgLoadError = "No se pudieron cargar los datos para editar"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Form drives the create-or-edit lifecycle of one entity: a draft record, a
// field→message validation map, an optionally attached media file and the
// submit call. One instance backs one open form; closing it resets
// everything so no stale draft leaks into the next open.
type Form[T any] struct {
	defaults func() T
	loadByID func(ctx context.Context, id int) (*T, error)
	create   func(ctx context.Context, draft T, file *Upload) error
	update   func(ctx context.Context, id int, draft T, file *Upload, removeMedia bool) error
	validate func(T) map[string]string
	onSaved  func(ctx context.Context)
	onOpen   func(ctx context.Context)

	mu          sync.Mutex
	open        bool
	mode        Mode
	id          int
	draft       T
	loading     bool
	errMsg      string
	fieldErrs   map[string]string
	file        *Upload
	removeMedia bool
}

// OpenCreate opens the form with a fresh default draft.
func (f *Form[T]) OpenCreate(ctx context.Context) {
	f.mu.Lock()
	f.reset()
	f.open = true
	f.mode = ModeCreate
	f.mu.Unlock()

	if f.onOpen != nil {
		f.onOpen(ctx)
	}
}

// OpenEdit opens the form in edit mode and fetches the record to populate
// the draft. Until the fetch resolves the form reports loading, never an
// empty draft, so a slow backend cannot cause a blank overwrite.
func (f *Form[T]) OpenEdit(ctx context.Context, id int) {
	f.mu.Lock()
	f.reset()
	f.open = true
	f.mode = ModeEdit
	f.id = id
	f.loading = true
	f.mu.Unlock()

	if f.onOpen != nil {
		f.onOpen(ctx)
	}

	record, err := f.loadByID(ctx, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.errMsg = api.Message(err, msgLoadError)
		return
	}
	f.draft = *record
}

// OpenEditDraft opens the form in edit mode with a draft the caller already
// has, skipping the fetch OpenEdit would do. Submitting a posted form is the
// case: the submitted fields replace the record wholesale, so prefilling
// first would only throw the fetched draft away.
func (f *Form[T]) OpenEditDraft(ctx context.Context, id int, draft T) {
	f.mu.Lock()
	f.reset()
	f.open = true
	f.mode = ModeEdit
	f.id = id
	f.draft = draft
	f.mu.Unlock()

	if f.onOpen != nil {
		f.onOpen(ctx)
	}
}

// SetDraft replaces the draft and optimistically clears the validation
// errors of the touched fields. Errors are only recomputed at submit.
func (f *Form[T]) SetDraft(draft T, touched ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft = draft
	for _, field := range touched {
		delete(f.fieldErrs, field)
	}
}

// AttachFile selects a new media file for this submission.
func (f *Form[T]) AttachFile(upload Upload) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.file = &upload
	f.removeMedia = false
}

// RemoveMedia marks the existing media reference for explicit clearing.
func (f *Form[T]) RemoveMedia() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.file = nil
	f.removeMedia = true
}

// Submit validates the draft and performs the create or update. Validation
// failure blocks the network call entirely. A backend failure keeps the form
// open with the backend's message so the input survives for correction;
// success fires the saved callback and closes.
func (f *Form[T]) Submit(ctx context.Context) error {
	f.mu.Lock()
	draft := f.draft
	mode := f.mode
	id := f.id
	file := f.file
	removeMedia := f.removeMedia
	f.errMsg = ""
	f.mu.Unlock()

	if errs := f.validate(draft); len(errs) > 0 {
		f.mu.Lock()
		f.fieldErrs = errs
		f.errMsg = msgFixForm
		f.mu.Unlock()
		return ErrValidation
	}

	var err error
	if mode == ModeEdit {
		err = f.update(ctx, id, draft, file, removeMedia)
	} else {
		err = f.create(ctx, draft, file)
	}
	if err != nil {
		f.mu.Lock()
		f.errMsg = api.Message(err, msgSaveError)
		f.mu.Unlock()
		return err
	}

	if f.onSaved != nil {
		f.onSaved(ctx)
	}
	f.Close()
	return nil
}

// Close discards the draft, the selected file and all errors.
func (f *Form[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

// caller must hold f.mu
func (f *Form[T]) reset() {
	f.open = false
	f.mode = ModeCreate
	f.id = 0
	f.draft = f.defaults()
	f.loading = false
	f.errMsg = ""
	f.fieldErrs = nil
	f.file = nil
	f.removeMedia = false
}

func (f *Form[T]) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *Form[T]) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *Form[T]) EditingID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *Form[T]) Draft() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *Form[T]) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Form[T]) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

func (f *Form[T]) FieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := make(map[string]string, len(f.fieldErrs))
	for k, v := range f.fieldErrs {
		errs[k] = v
	}
	return errs
}
