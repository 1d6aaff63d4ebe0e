package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"image-prompt-builder/internal/promptbuilder"
	"image-prompt-builder/internal/telegram"
)

const builderCallbackPrefix = "ip"

// titleCase builds a fresh Caser per call; a Caser must not be shared
// between goroutines.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func (h *Handler) startBuilder(chatID, userID int64) error {
	h.forms.Update(chatID, userID, func(st *promptbuilder.FormState) {
		st.Menu = promptbuilder.MenuMain
		st.Awaiting = promptbuilder.AwaitNone
	})
	return h.renderForm(chatID, userID, 0, false)
}

type callback struct {
	OwnerID int64
	Action  string
	Args    []string
}

func parseCallback(data string) (callback, bool) {
	parts := strings.Split(strings.TrimSpace(data), ":")
	if len(parts) < 3 || parts[0] != builderCallbackPrefix {
		return callback{}, false
	}
	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return callback{}, false
	}
	return callback{OwnerID: ownerID, Action: parts[2], Args: parts[3:]}, true
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", builderCallbackPrefix, ownerID, strings.Join(parts, ":"))
}

func (h *Handler) handleCallback(ctx context.Context, q *telegram.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}
	c, ok := parseCallback(q.Data)
	if !ok {
		return nil
	}
	if c.OwnerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu is not for you.", true)
		return nil
	}

	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID

	var updated promptbuilder.FormState
	if c.Action == "reset" {
		h.forms.Update(chatID, c.OwnerID, func(st *promptbuilder.FormState) { st.MessageID = msgID })
		updated = h.forms.Reset(chatID, c.OwnerID)
	} else {
		updated = h.forms.Update(chatID, c.OwnerID, func(st *promptbuilder.FormState) {
			st.MessageID = msgID
			h.applyAction(st, c)
		})
	}

	switch c.Action {
	case "custom":
		if f, ok := updated.AwaitingField(); ok {
			label := h.catalog.Spec(f).Label
			_ = h.tg.AnswerCallback(q.ID, "Send the custom "+strings.ToLower(label)+".", false)
			_ = h.tg.SendText(chatID, fmt.Sprintf("✏️ Send the custom %s (cancel: /cancel).", label))
		} else {
			_ = h.tg.AnswerCallback(q.ID, "OK", false)
		}
	case "details":
		_ = h.tg.AnswerCallback(q.ID, "Send the additional details.", false)
		_ = h.tg.SendText(chatID, "📝 Send additional details: subjects, specifics, modifications (cancel: /cancel).")
	case "generate":
		_ = h.tg.AnswerCallback(q.ID, "✅ Prompt generated!", false)
		if err := h.sendResult(ctx, chatID, updated.Selection); err != nil {
			return err
		}
	case "close":
		_ = h.tg.AnswerCallback(q.ID, "Closed", false)
		return h.closeForm(chatID, c.OwnerID, msgID)
	default:
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
	}

	return h.renderForm(chatID, c.OwnerID, msgID, true)
}

// applyAction mutates the form for one button press. "randomize" leaves the
// selection untouched and only triggers a re-render.
func (h *Handler) applyAction(st *promptbuilder.FormState, c callback) {
	switch c.Action {
	case "menu":
		if len(c.Args) >= 1 {
			st.Menu = c.Args[0]
		}
	case "opt":
		if len(c.Args) < 2 {
			return
		}
		f, ok := promptbuilder.ParseField(c.Args[0])
		if !ok {
			return
		}
		idx, err := strconv.Atoi(c.Args[1])
		spec := h.catalog.Spec(f)
		if err != nil || idx < 0 || idx >= len(spec.Options) {
			return
		}
		st.Selection.Set(f, promptbuilder.Predefined(spec.Options[idx]))
		st.Awaiting = promptbuilder.AwaitNone
		st.Menu = promptbuilder.MenuMain
	case "custom":
		if len(c.Args) < 1 {
			return
		}
		f, ok := promptbuilder.ParseField(c.Args[0])
		if !ok {
			return
		}
		if !st.Selection.Get(f).IsCustom() {
			st.Selection.Set(f, promptbuilder.Custom(""))
		}
		st.Awaiting = f.Key()
		st.Menu = promptbuilder.MenuMain
	case "details":
		st.Awaiting = promptbuilder.AwaitDetails
		st.Menu = promptbuilder.MenuMain
	case "generate", "randomize", "close":
		st.Awaiting = promptbuilder.AwaitNone
		st.Menu = promptbuilder.MenuMain
	}
}

// closeForm leaves the form summary in the chat without buttons. The values
// stay in the store for the next /builder.
func (h *Handler) closeForm(chatID, userID int64, messageID int) error {
	st := h.forms.Get(chatID, userID)
	text := formText(h.catalog, st) + "\nClosed. Send /builder to open it again."
	if err := h.tg.EditText(chatID, messageID, text); err != nil {
		h.logger.Warn("close form failed", "chat_id", chatID, "err", err)
		return err
	}
	return nil
}

func (h *Handler) renderForm(chatID, userID int64, messageID int, edit bool) error {
	st := h.forms.Get(chatID, userID)
	if messageID == 0 {
		messageID = st.MessageID
	}

	text := formText(h.catalog, st)
	kb := formKeyboard(h.catalog, userID, st)

	if edit && messageID != 0 {
		if err := h.tg.EditTextWithKeyboard(chatID, messageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.forms.Update(chatID, userID, func(st *promptbuilder.FormState) { st.MessageID = msgID })
	return nil
}

func formText(cat *promptbuilder.Catalog, st promptbuilder.FormState) string {
	var b strings.Builder
	b.WriteString("🖼️ AI Image Prompt Builder\n")

	column := ""
	for _, spec := range cat.Fields() {
		if c := spec.Field.Column(); c != column {
			column = c
			b.WriteString("\n" + column + ":\n")
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", spec.Label, choiceText(st.Selection.Get(spec.Field))))
	}

	details := "(none)"
	if st.Selection.Details != "" {
		details = truncateLine(st.Selection.Details, 120)
	}
	b.WriteString("\nAdditional Details: " + details + "\n")

	if f, ok := st.AwaitingField(); ok {
		b.WriteString(fmt.Sprintf("\n✏️ Waiting for the custom %s (cancel: /cancel).\n", cat.Spec(f).Label))
	} else if st.Awaiting == promptbuilder.AwaitDetails {
		b.WriteString("\n📝 Waiting for additional details (cancel: /cancel).\n")
	}

	if f, ok := st.MenuField(); ok {
		spec := cat.Spec(f)
		b.WriteString("\n" + spec.Label + ": " + spec.Help + "\n")
	}

	return strings.TrimSpace(b.String())
}

func choiceText(c promptbuilder.Choice) string {
	if !c.IsCustom() {
		return c.Resolve()
	}
	if c.Resolve() == "" {
		return "✏️ (empty)"
	}
	return "✏️ " + truncateLine(c.Resolve(), 60)
}

func formKeyboard(cat *promptbuilder.Catalog, ownerID int64, st promptbuilder.FormState) telegram.InlineKeyboard {
	if f, ok := st.MenuField(); ok {
		return optionsKeyboard(cat.Spec(f), ownerID, st.Selection.Get(f))
	}
	return mainKeyboard(cat, ownerID, st)
}

func mainKeyboard(cat *promptbuilder.Catalog, ownerID int64, st promptbuilder.FormState) telegram.InlineKeyboard {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, spec := range cat.Fields() {
		label := spec.Label + ": " + buttonText(st.Selection.Get(spec.Field))
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "menu", spec.Key())))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows,
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📝 Details", cb(ownerID, "details")),
			tgbotapi.NewInlineKeyboardButtonData("🎨 Generate", cb(ownerID, "generate")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🎲 Randomize", cb(ownerID, "randomize")),
			tgbotapi.NewInlineKeyboardButtonData("Reset", cb(ownerID, "reset")),
			tgbotapi.NewInlineKeyboardButtonData("Close", cb(ownerID, "close")),
		},
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func optionsKeyboard(spec promptbuilder.FieldSpec, ownerID int64, current promptbuilder.Choice) telegram.InlineKeyboard {
	selected := current.Index(spec)

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, opt := range spec.Options {
		label := titleCase(opt)
		if i == selected {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "opt", spec.Key(), strconv.Itoa(i))))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	custom := promptbuilder.CustomOption
	if current.IsCustom() {
		custom = "✅ " + custom
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(custom, cb(ownerID, "custom", spec.Key())),
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", promptbuilder.MenuMain)),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func buttonText(c promptbuilder.Choice) string {
	if c.IsCustom() {
		return "✏️ " + truncateLine(c.Resolve(), 16)
	}
	return titleCase(c.Resolve())
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
