package handlers

import (
	"context"
	"log/slog"
	"strings"

	"image-prompt-builder/internal/metrics"
	"image-prompt-builder/internal/promptbuilder"
	"image-prompt-builder/internal/telegram"
)

// Sender is the part of the Telegram client the handlers use.
type Sender interface {
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb telegram.InlineKeyboard) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb telegram.InlineKeyboard) error
	EditText(chatID int64, messageID int, text string) error
	AnswerCallback(callbackID, text string, alert bool) error
	SendDocument(chatID int64, name string, data []byte, caption string) error
}

type Options struct {
	Telegram Sender
	Catalog  *promptbuilder.Catalog
	Forms    *promptbuilder.Store
	Logger   *slog.Logger
}

type Handler struct {
	tg      Sender
	catalog *promptbuilder.Catalog
	forms   *promptbuilder.Store
	logger  *slog.Logger
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = promptbuilder.DefaultCatalog()
	}

	forms := opts.Forms
	if forms == nil {
		forms = promptbuilder.NewStore(catalog)
	}

	return &Handler{
		tg:      opts.Telegram,
		catalog: catalog,
		forms:   forms,
		logger:  logger,
	}
}

const helpText = "🖼️ AI Image Prompt Builder\n\n" +
	"Build prompts for AI image generators from a few visual controls.\n\n" +
	"Commands:\n" +
	"/builder - Open the prompt form\n" +
	"/prompt <description> - One-line prompt, e.g.\n" +
	"    /prompt style=anime lighting=\"golden hour\" ar=1:1 a red fox\n" +
	"/cancel - Stop waiting for custom text\n" +
	"/help - This message"

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	if msg.IsCommand() {
		return h.handleCommand(ctx, msg)
	}
	if msg.Text != "" {
		return h.handleText(msg.Chat.ID, msg.From.ID, msg.Text)
	}
	return nil
}

func (h *Handler) handleCommand(ctx context.Context, msg *telegram.Message) error {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	switch msg.Command() {
	case "start", "help":
		return h.tg.SendText(chatID, helpText)
	case "builder":
		return h.startBuilder(chatID, userID)
	case "prompt":
		args := strings.TrimSpace(msg.CommandArguments())
		if args == "" {
			return h.tg.SendText(chatID, "❌ Describe the image, e.g.\n/prompt style=watercolor env=nature a heron at dawn")
		}
		sel := h.catalog.ParseArgs(args, h.catalog.DefaultSelection())
		return h.sendResult(ctx, chatID, sel)
	case "cancel":
		h.forms.Update(chatID, userID, func(st *promptbuilder.FormState) {
			st.Awaiting = promptbuilder.AwaitNone
		})
		return h.tg.SendText(chatID, "✅ Cancelled.")
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Use /help.")
	}
}

func (h *Handler) handleText(chatID, userID int64, text string) error {
	accepted := false
	h.forms.Update(chatID, userID, func(st *promptbuilder.FormState) {
		accepted = st.AcceptText(text)
	})
	if !accepted {
		return h.tg.SendText(chatID, "Use /builder to open the prompt form or /prompt <description>.")
	}
	return h.renderForm(chatID, userID, 0, false)
}

// sendResult assembles the prompt and sends it as text plus the JSON export.
func (h *Handler) sendResult(ctx context.Context, chatID int64, sel promptbuilder.Selection) error {
	rec := promptbuilder.Assemble(sel)
	metrics.ObservePrompt(metrics.SurfaceBot, sel)

	data, err := rec.ExportJSON()
	if err != nil {
		return err
	}

	// Text first, then the export file.
	if err := h.tg.SendText(chatID, rec.FullPrompt); err != nil {
		h.logger.Error("send prompt failed", "chat_id", chatID, "err", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := h.tg.SendDocument(chatID, promptbuilder.ExportFilename, data, "💾 Prompt details"); err != nil {
		h.logger.Error("send export failed", "chat_id", chatID, "err", err)
		return err
	}
	metrics.Exports.WithLabelValues(metrics.SurfaceBot).Inc()
	return nil
}
