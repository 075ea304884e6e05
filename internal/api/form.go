package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Form accumulates a multipart/form-data payload for the create and update
// endpoints of media-bearing entities. Write errors are sticky and reported
// when the form is submitted.
type Form struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	closed bool
	err    error
}

func NewForm() *Form {
	f := &Form{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

func (f *Form) Field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.writer.WriteField(name, value)
}

func (f *Form) File(field, filename string, r io.Reader) {
	if f.err != nil {
		return
	}
	part, err := f.writer.CreateFormFile(field, filename)
	if err != nil {
		f.err = fmt.Errorf("failed to create form file %q: %w", field, err)
		return
	}
	if _, err := io.Copy(part, r); err != nil {
		f.err = fmt.Errorf("failed to copy file %q: %w", filename, err)
	}
}

func (f *Form) Err() error {
	return f.err
}

func (f *Form) ContentType() string {
	return f.writer.FormDataContentType()
}

func (f *Form) reader() io.Reader {
	if !f.closed {
		f.writer.Close()
		f.closed = true
	}
	return &f.buf
}
