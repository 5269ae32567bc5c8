package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/internal/models"
	"github.com/xaenox/sentiment-bot/internal/sentiment"
)

// maxPending bounds the number of unanswered label keyboards kept in memory.
const maxPending = 256

const cancelAction = "cancel"

var errUnknownCallback = errors.New("unknown callback data")

// sender is the part of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// pendingLabel is an input waiting for the user to press a label button.
type pendingLabel struct {
	text   string
	tokens []string
}

type Bot struct {
	api        *tgbotapi.BotAPI
	out        sender
	session    *sentiment.Session
	recentRows int
	logger     *zap.Logger

	pending map[string]pendingLabel
	order   []string
}

func New(token string, session *sentiment.Session, recentRows int, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	b := newBot(api, session, recentRows, logger)
	b.api = api
	return b, nil
}

func newBot(out sender, session *sentiment.Session, recentRows int, logger *zap.Logger) *Bot {
	if recentRows <= 0 {
		recentRows = 10
	}
	return &Bot{
		out:        out,
		session:    session,
		recentRows: recentRows,
		logger:     logger,
		pending:    make(map[string]pendingLabel),
	}
}

// Start polls for updates until ctx is done. Updates are handled one at a
// time so labels and retrains apply in the order users sent them.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				b.logger.Error("Failed to handle update",
					zap.Error(err),
					zap.Int("update_id", update.UpdateID))
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.IsCommand() {
		return b.handleCommand(ctx, message)
	}

	content := message.Text
	if message.Caption != "" {
		content = message.Caption
	}
	chat := b.chat(message.Chat.ID)

	a, err := b.session.Analyze(ctx, content)
	if errors.Is(err, sentiment.ErrEmptyInput) {
		return chat.Present(ctx, sentiment.MsgEmptyInput, sentiment.Warning)
	}

	if a.Route == sentiment.RoutePredict {
		if err != nil {
			msg, sev := sentiment.ErrorMessage(err, b.session.MinExamples())
			return chat.Present(ctx, msg, sev)
		}
		reply := tgbotapi.NewMessage(message.Chat.ID, sentiment.PredictionMessage(*a.Prediction))
		reply.ReplyToMessageID = message.MessageID
		return b.send(reply)
	}

	text := sentiment.UnknownWordsMessage(sentiment.Distinct(a.Unknown)) + "\n" + sentiment.MsgAskToTeach
	if suggestion, ok := b.session.Suggest(ctx, content); ok {
		text += "\n" + sentiment.SuggestionMessage(suggestion)
	}

	id := b.remember(pendingLabel{text: content, tokens: a.Tokens})
	reply := tgbotapi.NewMessage(message.Chat.ID, text)
	reply.ReplyToMessageID = message.MessageID
	reply.ReplyMarkup = labelKeyboard(id)
	return b.send(reply)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chat := b.chat(message.Chat.ID)
	switch message.Command() {
	case "start":
		return b.sendText(message.Chat.ID, strings.Join([]string{
			sentiment.MsgTitle, sentiment.MsgIntro, sentiment.MsgTryHint, helpText,
		}, "\n\n"))
	case "help":
		return b.sendText(message.Chat.ID, helpText)
	case "retrain":
		return b.session.RetrainWith(ctx, chat)
	case "stats", "data":
		return b.session.ShowData(ctx, chat, b.recentRows)
	default:
		return b.sendText(message.Chat.ID, "Lệnh không hợp lệ. Dùng /help để xem các lệnh.")
	}
}

const helpText = `Các lệnh:
/start - Bắt đầu
/help - Hướng dẫn
/retrain - Huấn luyện lại mô hình
/stats - Xem dữ liệu huấn luyện và phân bố nhãn

Gửi một câu tiếng Việt để tôi đoán cảm xúc. Nếu có từ tôi chưa biết, hãy chọn nhãn để dạy tôi.`

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	action, id, label, err := parseCallbackData(query.Data)
	if err != nil {
		b.answer(query.ID, "")
		return err
	}

	p, ok := b.take(id)
	if !ok {
		b.answer(query.ID, "⌛ Yêu cầu đã hết hạn.")
		return nil
	}

	var text string
	switch action {
	case cancelAction:
		text = sentiment.MsgCancelled
	default:
		_, err = b.session.Submit(ctx, p.text, p.tokens, label)
		if err != nil {
			text, _ = sentiment.ErrorMessage(err, b.session.MinExamples())
		} else {
			text = sentiment.SavedMessage(p.text, label) + "\n" + sentiment.MsgRetrainHint
			b.logger.Info("Labeled from Telegram",
				zap.Int64("user_id", query.From.ID),
				zap.String("label", string(label)))
		}
	}

	b.answer(query.ID, "")
	if query.Message != nil {
		edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
		if serr := b.send(edit); serr != nil {
			return serr
		}
	}
	return err
}

// remember stores p under a fresh id, evicting the oldest entry when full.
func (b *Bot) remember(p pendingLabel) string {
	id := uuid.New().String()
	if len(b.order) >= maxPending {
		delete(b.pending, b.order[0])
		b.order = b.order[1:]
	}
	b.pending[id] = p
	b.order = append(b.order, id)
	return id
}

func (b *Bot) take(id string) (pendingLabel, bool) {
	p, ok := b.pending[id]
	if !ok {
		return pendingLabel{}, false
	}
	delete(b.pending, id)
	for i, o := range b.order {
		if o == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return p, true
}

func labelKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(models.Labels))
	for _, l := range models.Labels {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			sentiment.Emoji(l)+" "+string(l),
			callbackData(id, l)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(buttons...),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Bỏ qua", cancelAction+":"+id)),
	)
}

func callbackData(id string, l models.Label) string {
	return "label:" + id + ":" + string(l)
}

// parseCallbackData reads "label:<id>:<label>" or "cancel:<id>".
func parseCallbackData(data string) (action, id string, label models.Label, err error) {
	parts := strings.Split(data, ":")
	switch {
	case len(parts) == 3 && parts[0] == "label":
		label, err = models.ParseLabel(parts[2])
		if err != nil {
			return "", "", "", err
		}
		return parts[0], parts[1], label, nil
	case len(parts) == 2 && parts[0] == cancelAction:
		return cancelAction, parts[1], "", nil
	}
	return "", "", "", fmt.Errorf("%w: %q", errUnknownCallback, data)
}

func (b *Bot) answer(queryID, text string) {
	if _, err := b.out.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		b.logger.Error("Failed to answer callback", zap.Error(err), zap.String("query_id", queryID))
	}
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	if _, err := b.out.Send(c); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.send(tgbotapi.NewMessage(chatID, text))
}
