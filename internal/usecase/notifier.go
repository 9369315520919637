package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"IPOWatch/internal/domain/models"
	drepo "IPOWatch/internal/domain/repository"
	"IPOWatch/internal/services/ipo"
	"IPOWatch/pkg/util"

	"github.com/shopspring/decimal"
)

const (
	MaxTitleRunes = 32
	MaxBodyBytes  = 32 * 1024
)

// ErrNoPusher is returned when a notification is due but no push channel is
// configured.
var ErrNoPusher = errors.New("no push channel configured")

// Notifier turns a positive decision into a push message.
type Notifier struct {
	pusher     drepo.Pusher
	thresholds ipo.Thresholds
}

// NewNotifier creates a Notifier. pusher may be nil.
func NewNotifier(pusher drepo.Pusher, th ipo.Thresholds) *Notifier {
	return &Notifier{pusher: pusher, thresholds: th}
}

// Notify pushes d. It returns (false, nil) for a decision that should not be
// sent.
func (n *Notifier) Notify(ctx context.Context, d models.NotificationDecision) (bool, error) {
	if !d.ShouldSend {
		return false, nil
	}
	if n.pusher == nil {
		return false, ErrNoPusher
	}

	title := TruncateTitle(FormatTitle(d.Month))
	body := TruncateBody(FormatBody(d, n.thresholds))
	if err := n.pusher.Push(ctx, title, body); err != nil {
		return false, fmt.Errorf("push %s: %w", d.Month, err)
	}
	return true, nil
}

func FormatTitle(month string) string {
	return month + " IPO提示"
}

// FormatBody renders the markdown bullet list sent as the message body.
func FormatBody(d models.NotificationDecision, th ipo.Thresholds) string {
	var reasons []string
	if d.Reason == models.ReasonCount || d.Reason == models.ReasonCountAndFunds {
		reasons = append(reasons, "数量>"+strconv.Itoa(th.IPOCount))
	}
	if d.Reason == models.ReasonFunds || d.Reason == models.ReasonCountAndFunds {
		reasons = append(reasons, "募资>"+util.FormatFloat(th.Funds))
	}

	lines := []string{
		"- 月份: " + d.Month,
		"- 上市家数: " + strconv.Itoa(d.IPOCount),
		"- 募集资金合计(亿元): " + decimal.NewFromFloat(d.FundsSum).StringFixed(2),
		"- 触发条件: " + strings.Join(reasons, ", "),
	}
	return strings.Join(lines, "\n")
}

// TruncateTitle flattens newlines and keeps at most MaxTitleRunes runes,
// marking a cut with a trailing ellipsis.
func TruncateTitle(title string) string {
	t := strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(title))
	if utf8.RuneCountInString(t) <= MaxTitleRunes {
		return t
	}
	r := []rune(t)
	return string(r[:MaxTitleRunes-1]) + "…"
}

// TruncateBody trims b and cuts it to MaxBodyBytes without splitting a
// UTF-8 sequence.
func TruncateBody(b string) string {
	b = strings.TrimSpace(b)
	if len(b) <= MaxBodyBytes {
		return b
	}
	i := MaxBodyBytes
	for i > 0 && !utf8.RuneStart(b[i]) {
		i--
	}
	return b[:i]
}
