// Package console is the line-oriented terminal front-end.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/internal/models"
	"github.com/xaenox/sentiment-bot/internal/sentiment"
	"github.com/xaenox/sentiment-bot/internal/stats"
)

const barWidth = 20

const help = `Lệnh:
  :retrain   Huấn luyện lại mô hình
  :stats     Xem dữ liệu huấn luyện và phân bố nhãn
  :recent    Xem các mẫu mới nhất
  :help      Hiện hướng dẫn này
  :quit      Thoát
Nhập bất kỳ câu tiếng Việt nào để phân loại.`

// Console reads input lines and runs each through the session.
type Console struct {
	in         *bufio.Scanner
	out        io.Writer
	session    *sentiment.Session
	recentRows int
	logger     *zap.Logger
}

func New(in io.Reader, out io.Writer, session *sentiment.Session, recentRows int, logger *zap.Logger) *Console {
	if recentRows <= 0 {
		recentRows = 10
	}
	return &Console{
		in:         bufio.NewScanner(in),
		out:        out,
		session:    session,
		recentRows: recentRows,
		logger:     logger,
	}
}

// Run loops until :quit, end of input, or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintf(c.out, "%s\n%s\n%s\n%s\n", sentiment.MsgTitle, sentiment.MsgIntro, sentiment.MsgTryHint, help)
	if c.session.Stale() {
		fmt.Fprintln(c.out, sentiment.MsgStale)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, ok := c.readLine("> ")
		if !ok {
			return c.in.Err()
		}
		if line == "" {
			continue
		}

		var err error
		switch line {
		case ":quit", ":q", ":exit":
			return nil
		case ":help", ":h":
			_, err = fmt.Fprintln(c.out, help)
		case ":retrain", ":r":
			err = c.session.RetrainWith(ctx, c)
		case ":stats", ":data", ":s":
			err = c.session.ShowData(ctx, c, c.recentRows)
		case ":recent":
			err = c.showRecent(ctx)
		default:
			err = c.session.Interact(ctx, c, line)
		}

		if errors.Is(err, sentiment.ErrStorageUnavailable) {
			c.logger.Warn("Storage error during console session", zap.Error(err))
			continue
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) showRecent(ctx context.Context) error {
	recent, err := c.session.Recent(ctx, c.recentRows)
	if err != nil {
		msg, sev := sentiment.ErrorMessage(err, c.session.MinExamples())
		if perr := c.Present(ctx, msg, sev); perr != nil {
			return perr
		}
		return err
	}
	if len(recent) == 0 {
		return c.Present(ctx, sentiment.MsgNoData, sentiment.Info)
	}
	return c.RenderTable(ctx, recent)
}

func (c *Console) readLine(prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) Present(_ context.Context, message string, severity sentiment.Severity) error {
	if severity == sentiment.Error {
		message = "[lỗi] " + message
	}
	_, err := fmt.Fprintln(c.out, message)
	return err
}

// RequestLabel reads one line. A blank line or end of input cancels; digits
// 1 to 3 pick labels in display order.
func (c *Console) RequestLabel(_ context.Context, candidate string, suggestion models.Label) (models.Label, bool, error) {
	if suggestion != "" {
		fmt.Fprintln(c.out, sentiment.SuggestionMessage(suggestion))
	}
	choices := make([]string, len(models.Labels))
	for i, l := range models.Labels {
		choices[i] = fmt.Sprintf("%d=%s", i+1, l)
	}
	line, ok := c.readLine(fmt.Sprintf("Nhãn cho '%s' [%s, Enter để bỏ qua]: ", candidate, strings.Join(choices, " ")))
	if !ok || line == "" {
		return "", false, nil
	}
	return parseChoice(line), true, nil
}

// parseChoice maps a digit or label name to a label. Anything else is passed
// through so the session can reject it.
func parseChoice(s string) models.Label {
	if len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(models.Labels) {
		return models.Labels[s[0]-'1']
	}
	if l, err := models.ParseLabel(s); err == nil {
		return l
	}
	return models.Label(s)
}

func (c *Console) RenderTable(_ context.Context, recent []models.Example) error {
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tVĂN BẢN\tNHÃN")
	for i, ex := range recent {
		fmt.Fprintf(tw, "%d\t%s\t%s %s\n", i+1, ex.Text, ex.Label, sentiment.Emoji(ex.Label))
	}
	return tw.Flush()
}

func (c *Console) RenderDistribution(_ context.Context, summary stats.Summary) error {
	tw := tabwriter.NewWriter(c.out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "📊 Phân bố nhãn (%d mẫu)\n", summary.Snapshot.Total)
	for _, l := range models.Labels {
		pct := summary.Percentages.Of(l)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%5.1f%%\n", l, bar(pct), summary.Snapshot.Of(l), pct)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.out, "%s %s\n", summary.Indicator, summary.Message)
	return err
}

func bar(pct float64) string {
	n := int(pct/100*barWidth + 0.5)
	return strings.Repeat("█", n) + strings.Repeat("·", barWidth-n)
}
