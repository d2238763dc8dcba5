package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"smart-pantry/internal/app"
	"smart-pantry/internal/config"
	"smart-pantry/internal/metrics"
	"smart-pantry/internal/shared"
	"smart-pantry/internal/storage"
)

const (
	// namespacePrefix scopes every Telegram user's documents.
	namespacePrefix = "tg:"
	// maxPhotoBytes caps pantry photo downloads.
	maxPhotoBytes = 10 << 20
	// bloatTokens triggers an admin alert for oversized prompts.
	bloatTokens = 4000
)

// Messenger is the part of the Telegram API the bot uses.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// StoreFactory opens the document store of a namespace.
type StoreFactory func(namespace string) (*storage.DocumentStore, error)

// Options are the collaborators shared by every chat.
type Options struct {
	Stores StoreFactory
	// Deps is the template for each user's App. Namespace is filled in per user.
	Deps     app.Deps
	Usage    *metrics.Store
	Gatherer prometheus.Gatherer
	// DataPath is the directory reported by /metrics.
	DataPath   string
	HTTPClient *http.Client
	Log        *zap.Logger
}

// Bot serves the Telegram webhook. Every user gets an App over their own
// namespace unless they joined another user's household.
type Bot struct {
	api  Messenger
	cfg  *config.Config
	opts Options
	deps app.Deps
	log  *zap.Logger

	mu     sync.Mutex
	apps   map[string]*app.App
	stores map[string]*storage.DocumentStore
}

// NewAPI authorises the bot token and registers the webhook.
func NewAPI(cfg *config.Config, log *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info("authorized on account", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Info("webhook set", zap.String("response", resp.Description))
	return api, nil
}

// NewBot wires the bot. Collaborator metrics are forwarded to the configured
// recorder and oversized prompts are reported to the admin.
func NewBot(cfg *config.Config, api Messenger, opts Options) *Bot {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	b := &Bot{
		api:    api,
		cfg:    cfg,
		opts:   opts,
		deps:   opts.Deps,
		log:    opts.Log,
		apps:   map[string]*app.App{},
		stores: map[string]*storage.DocumentStore{},
	}
	if b.deps.Log == nil {
		b.deps.Log = opts.Log
	}
	b.deps.Recorder = &alertRecorder{next: opts.Deps.Recorder, bot: b}
	return b
}

// Routes returns the HTTP handler for the webhook, health and metrics endpoints.
func (b *Bot) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/webhook", b.handleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if b.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(b.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.log.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	from := senderOf(update)
	if from == nil {
		return
	}
	if !b.isAllowed(from.ID) {
		b.log.Warn("unauthorized access attempt",
			zap.Int64("user_id", from.ID),
			zap.String("username", from.UserName),
		)
		return
	}

	go b.handleUpdate(context.Background(), *update)
}

func senderOf(update *tgbotapi.Update) *tgbotapi.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From
	}
	return nil
}

func (b *Bot) isAllowed(userID int64) bool {
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if userID == id {
			return true
		}
	}
	return false
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		b.processMessage(ctx, update.Message)
	}
}

func namespaceFor(userID int64) string {
	return namespacePrefix + strconv.FormatInt(userID, 10)
}

// storeFor returns the cached store of a namespace.
func (b *Bot) storeFor(namespace string) (*storage.DocumentStore, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.stores[namespace]; ok {
		return s, nil
	}
	s, err := b.opts.Stores(namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", namespace, err)
	}
	b.stores[namespace] = s
	return s, nil
}

// openApp returns the cached App of a namespace, loading it on first use.
func (b *Bot) openApp(ctx context.Context, namespace string) (*app.App, error) {
	store, err := b.storeFor(namespace)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if a, ok := b.apps[namespace]; ok {
		return a, nil
	}
	deps := b.deps
	deps.Namespace = namespace
	deps.Log = b.log.With(zap.String("namespace", namespace))
	a := app.Open(ctx, store, deps)
	b.apps[namespace] = a
	return a, nil
}

// householdLink returns the namespace of the household the user joined, or "".
func (b *Bot) householdLink(ctx context.Context, userID int64) (string, error) {
	store, err := b.storeFor(namespaceFor(userID))
	if err != nil {
		return "", err
	}
	return storage.Load(ctx, store, storage.KeyHouseholdLink, ""), nil
}

func (b *Bot) setHouseholdLink(ctx context.Context, userID int64, namespace string) error {
	store, err := b.storeFor(namespaceFor(userID))
	if err != nil {
		return err
	}
	return store.Save(ctx, storage.KeyHouseholdLink, namespace)
}

// appFor resolves the App a user acts on: the joined household's while the
// user is still an active member of it, otherwise their own. A link that no
// longer matches a membership is dropped.
func (b *Bot) appFor(ctx context.Context, userID int64) (*app.App, error) {
	own, err := b.openApp(ctx, namespaceFor(userID))
	if err != nil {
		return nil, err
	}
	link, err := b.householdLink(ctx, userID)
	if err != nil || link == "" {
		return own, err
	}

	shared, err := b.openApp(ctx, link)
	if err != nil {
		return nil, err
	}
	if user := own.Snapshot().User; user != nil && shared.Snapshot().Household.IsActive(user.Email) {
		return shared, nil
	}

	b.log.Info("household access revoked", zap.Int64("user_id", userID), zap.String("household", link))
	if err := b.setHouseholdLink(ctx, userID, ""); err != nil {
		return nil, err
	}
	return own, nil
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	a, err := b.appFor(ctx, msg.From.ID)
	if err != nil {
		b.log.Error("failed to open user state", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, formatError(err))
		return
	}

	switch {
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, a, msg)
	case msg.IsCommand():
		b.handleCommand(ctx, a, msg)
	case isURL(strings.TrimSpace(msg.Text)):
		b.handleImport(ctx, a, msg)
	default:
		b.reply(msg.Chat.ID, "Send /help to see what I can do.")
	}
}

func (b *Bot) handleImport(ctx context.Context, a *app.App, msg *tgbotapi.Message) {
	url := strings.TrimSpace(msg.Text)
	b.withStatus(msg.Chat.ID, "✂️ *Importing recipe...*", func() string {
		saved, err := a.ImportRecipe(ctx, url)
		if err != nil {
			b.log.Warn("error importing recipe", zap.String("url", url), zap.Error(err))
			return formatError(err)
		}
		return fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s", esc(saved.Title))
	})
}

func (b *Bot) handlePhoto(ctx context.Context, a *app.App, msg *tgbotapi.Message) {
	// Telegram lists the sizes of a photo smallest first.
	photo := msg.Photo[len(msg.Photo)-1]
	b.withStatus(msg.Chat.ID, "📸 *Scanning your groceries...*", func() string {
		image, err := b.downloadFile(ctx, photo.FileID)
		if err != nil {
			b.log.Warn("failed to download photo", zap.Error(err))
			return formatError(err)
		}
		items, err := a.ScanPantry(ctx, image, http.DetectContentType(image))
		if err != nil {
			return formatError(err)
		}
		return formatScan(items)
	})
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}

// withStatus posts a progress message and replaces it with the result of fn.
func (b *Bot) withStatus(chatID int64, status string, fn func() string) {
	msg := tgbotapi.NewMessage(chatID, status)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Warn("failed to send status message", zap.Error(err))
		b.reply(chatID, fn())
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, fn())
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.log.Warn("failed to edit status message", zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.reply(b.cfg.AdminTelegramID, text)
}

// alertRecorder forwards collaborator metrics and reports context bloat.
type alertRecorder struct {
	next app.MetricsRecorder
	bot  *Bot
}

func (r *alertRecorder) Record(ctx context.Context, meta shared.AgentMeta, err error) {
	if r.next != nil {
		r.next.Record(ctx, meta, err)
	}
	if meta.Usage.PromptTokens > bloatTokens {
		r.bot.sendAdminAlert(fmt.Sprintf("⚠️ *Context Bloat Alert*\nAgent: %s\nModel: %s\nPrompt Tokens: %d",
			meta.AgentName, esc(meta.Usage.Model), meta.Usage.PromptTokens))
	}
}
