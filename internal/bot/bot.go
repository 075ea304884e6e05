// Package bot exposes a small read-only slice of the catalog over Telegram:
// the next event, the latest news and an incremental fighter search backed by
// the same list controller the web handlers use.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/javiermontes/mma-portal/internal/catalog"
	"github.com/javiermontes/mma-portal/internal/session"
)

const (
	searchPageSize = 5
	newsCount      = 3
)

type Bot struct {
	api      *tgbotapi.BotAPI
	catalog  *catalog.Manager
	sessions *session.Store
	log      *slog.Logger

	mu       sync.Mutex
	searches map[int64]*catalog.List[catalog.Fighter]
}

func New(token string, mgr *catalog.Manager, store *session.Store, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to telegram: %w", err)
	}
	log.Info("telegram bot connected", "username", api.Self.UserName)

	return &Bot{
		api:      api,
		catalog:  mgr,
		sessions: store,
		log:      log,
		searches: make(map[int64]*catalog.List[catalog.Fighter]),
	}, nil
}

// Run consumes updates until the context is cancelled. The context is wrapped
// with anonymous session data up front so the api client's token source can
// read it on every catalog call, including the debounced ones firing from
// timer goroutines.
func (b *Bot) Run(ctx context.Context) error {
	ctx = b.sessions.Anonymous(ctx)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.handleMessage(ctx, update.Message)
	}

	b.mu.Lock()
	for _, list := range b.searches {
		list.Close()
	}
	b.mu.Unlock()

	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/start":
		b.send(chatID, "¡Bienvenido al portal MMA!\n\n"+
			"/proximo - próximo evento\n"+
			"/noticias - últimas noticias\n"+
			"/peleadores <nombre> - buscar peleadores")
	case text == "/proximo":
		b.nextEvent(ctx, chatID)
	case text == "/noticias":
		b.latestNews(ctx, chatID)
	case strings.HasPrefix(text, "/peleadores"):
		term := strings.TrimSpace(strings.TrimPrefix(text, "/peleadores"))
		b.searchFighters(ctx, chatID, term)
	case b.hasSearch(chatID) && !strings.HasPrefix(text, "/"):
		// a plain message after /peleadores refines the running search
		b.searchFighters(ctx, chatID, text)
	default:
		b.send(chatID, "Comando desconocido. Usa /start")
	}
}

func (b *Bot) nextEvent(ctx context.Context, chatID int64) {
	events, _, err := b.catalog.Events(ctx, 1, 50, "")
	if err != nil {
		b.log.Error("failed to load events for bot", "error", err)
		b.send(chatID, "No se pudieron cargar los eventos.")
		return
	}

	now := time.Now()
	var next *catalog.Event
	for i := range events {
		e := events[i]
		if e.Completed(now) {
			continue
		}
		day, err := e.Day()
		if err != nil {
			continue
		}
		if next == nil {
			next = &events[i]
			continue
		}
		nextDay, _ := next.Day()
		if day.Before(nextDay) {
			next = &events[i]
		}
	}
	if next == nil {
		b.send(chatID, "No hay eventos próximos.")
		return
	}
	b.send(chatID, fmt.Sprintf("Próximo evento:\n%s\n%s, %s", next.Name, next.Location, next.Date))
}

func (b *Bot) latestNews(ctx context.Context, chatID int64) {
	news, _, err := b.catalog.News(ctx, 1, newsCount, "")
	if err != nil {
		b.log.Error("failed to load news for bot", "error", err)
		b.send(chatID, "No se pudieron cargar las noticias.")
		return
	}
	if len(news) == 0 {
		b.send(chatID, "No hay noticias.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Últimas noticias:\n")
	for _, n := range news {
		fmt.Fprintf(&sb, "\n• %s (%s)", n.Title, n.PublishedAt.Format("02/01/2006"))
	}
	b.send(chatID, sb.String())
}

// searchFighters routes the term through the chat's list controller, so a
// burst of messages collapses into one backend request for the final term.
func (b *Bot) searchFighters(ctx context.Context, chatID int64, term string) {
	list := b.searchList(chatID)
	if term == "" {
		b.send(chatID, "Escribe un nombre para buscar, por ejemplo: /peleadores Pérez")
		return
	}
	list.SetSearchTerm(ctx, term)
}

func (b *Bot) searchList(chatID int64) *catalog.List[catalog.Fighter] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if list, ok := b.searches[chatID]; ok {
		return list
	}
	var list *catalog.List[catalog.Fighter]
	list = catalog.NewList(b.catalog.Fighters,
		catalog.WithLimit[catalog.Fighter](searchPageSize),
		catalog.WithOnChange[catalog.Fighter](func() {
			b.sendSearchResults(chatID, list)
		}),
	)
	b.searches[chatID] = list
	return list
}

func (b *Bot) sendSearchResults(chatID int64, list *catalog.List[catalog.Fighter]) {
	if list.Loading() {
		return
	}
	if err := list.Err(); err != nil {
		b.log.Error("fighter search failed", "error", err)
		b.send(chatID, "La búsqueda falló. Inténtalo de nuevo.")
		return
	}

	fighters := list.Items()
	if len(fighters) == 0 {
		b.send(chatID, fmt.Sprintf("Sin resultados para %q.", list.SearchTerm()))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Resultados para %q:\n", list.SearchTerm())
	for _, f := range fighters {
		fmt.Fprintf(&sb, "\n• %s (%s) %d-%d-%d", f.FullName(), f.WeightClass, f.RecordWins, f.RecordLosses, f.RecordDraws)
	}
	if p := list.Pagination(); p.TotalItems > len(fighters) {
		fmt.Fprintf(&sb, "\n\n%d resultados en total, se muestran los primeros %d.", p.TotalItems, len(fighters))
	}
	b.send(chatID, sb.String())
}

func (b *Bot) hasSearch(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.searches[chatID]
	return ok
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("failed to send telegram message", "error", err)
	}
}
