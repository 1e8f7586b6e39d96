package reporter

import (
	"fmt"
	"html"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-critique-crawler/internal/config"
	"go-critique-crawler/internal/models"
	"go-critique-crawler/internal/storage"
)

// maxListed caps how many negative posts one summary message links to;
// Telegram rejects messages over 4096 characters.
const maxListed = 10

type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(cfg *config.Config) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &TelegramReporter{
		bot:    bot,
		chatID: cfg.TelegramChatID,
	}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// SendSummary reports the run totals and links the first negative posts.
func (t *TelegramReporter) SendSummary(export *storage.Export) error {
	return t.SendMessage(FormatSummary(export))
}

func (t *TelegramReporter) SendError(errReq error) error {
	text := fmt.Sprintf("⚠️ <b>Critique crawler error</b>:\n%s", html.EscapeString(errReq.Error()))
	return t.SendMessage(text)
}

// FormatSummary renders the HTML summary message for a combined export.
func FormatSummary(export *storage.Export) string {
	var b strings.Builder
	sum := export.Summary

	fmt.Fprintf(&b, "📊 <b>해설 비판 수집 결과</b> (%s)\n", html.EscapeString(export.CollectionDatetime))
	fmt.Fprintf(&b, "수집 %d건 · 부정 %d건\n\n", sum.TotalCollected, sum.TotalNegative)

	names := make([]string, 0, len(sum.Platforms))
	for name := range sum.Platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ps := sum.Platforms[name]
		fmt.Fprintf(&b, "• %s: %d건 (부정 %d)\n", html.EscapeString(name), ps.Collected, ps.Negative)
	}

	negatives := negativePosts(export.Posts)
	if len(negatives) == 0 {
		return b.String()
	}

	b.WriteString("\n🔥 <b>부정 게시글</b>\n")
	for i, p := range negatives {
		if i == maxListed {
			fmt.Fprintf(&b, "… 외 %d건\n", len(negatives)-maxListed)
			break
		}
		fmt.Fprintf(&b, "%d. <a href=\"%s\">%s</a> [%s]\n",
			i+1,
			html.EscapeString(p.URL),
			html.EscapeString(models.Truncate(p.Title, 60)),
			html.EscapeString(strings.Join(p.MatchedNegative, ", ")),
		)
	}
	return b.String()
}

func negativePosts(posts []*models.Post) []*models.Post {
	var out []*models.Post
	for _, p := range posts {
		if p.IsNegative {
			out = append(out, p)
		}
	}
	return out
}
