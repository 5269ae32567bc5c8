package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xaenox/sentiment-bot/internal/models"
	"github.com/xaenox/sentiment-bot/internal/sentiment"
	"github.com/xaenox/sentiment-bot/internal/stats"
)

// chatPresenter renders session output into one Telegram chat.
type chatPresenter struct {
	bot    *Bot
	chatID int64
}

func (b *Bot) chat(chatID int64) chatPresenter {
	return chatPresenter{bot: b, chatID: chatID}
}

func (c chatPresenter) Present(_ context.Context, message string, _ sentiment.Severity) error {
	return c.bot.sendText(c.chatID, message)
}

func (c chatPresenter) RenderTable(_ context.Context, recent []models.Example) error {
	return c.sendMarkdown(formatRecent(recent))
}

func (c chatPresenter) RenderDistribution(_ context.Context, summary stats.Summary) error {
	return c.sendMarkdown(formatDistribution(summary))
}

func (c chatPresenter) sendMarkdown(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return c.bot.send(msg)
}

func formatRecent(recent []models.Example) string {
	var sb strings.Builder
	sb.WriteString("*Dữ liệu gần đây:*\n")
	for i, ex := range recent {
		fmt.Fprintf(&sb, "%s _%s_ %s\n",
			escapeMarkdown(fmt.Sprintf("%d.", i+1)),
			escapeMarkdown(ex.Text),
			escapeMarkdown("→ "+string(ex.Label)+" "+sentiment.Emoji(ex.Label)))
	}
	return sb.String()
}

func formatDistribution(summary stats.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n", escapeMarkdown(fmt.Sprintf("📊 Phân bố nhãn (%d mẫu)", summary.Snapshot.Total)))
	for _, l := range models.Labels {
		line := fmt.Sprintf("%s %s: %d (%.1f%%)",
			sentiment.Emoji(l), l, summary.Snapshot.Of(l), summary.Percentages.Of(l))
		sb.WriteString(escapeMarkdown(line) + "\n")
	}
	sb.WriteString("\n" + escapeMarkdown(summary.Indicator+" "+summary.Message))
	return sb.String()
}

// escapeMarkdown escapes the characters MarkdownV2 treats as markup.
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}
