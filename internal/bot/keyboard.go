package bot

import (
	"strings"
	"unicode/utf8"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/samber/lo"
)

const maxMessageLength = 4096

func inlineKeyboard(menu models.Menu) botApi.InlineKeyboardMarkup {
	rows := lo.Map(menu, func(row []models.MenuButton, _ int) []botApi.InlineKeyboardButton {
		return lo.Map(row, func(button models.MenuButton, _ int) botApi.InlineKeyboardButton {
			return botApi.NewInlineKeyboardButtonData(button.Label, button.Data)
		})
	})
	return botApi.NewInlineKeyboardMarkup(rows...)
}

// splitMessage cuts text into chunks of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	var chunks []string

	for utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		cut := string(runes[:limit])
		if i := strings.LastIndex(cut, "\n"); i > 0 {
			cut = cut[:i]
		}
		chunks = append(chunks, cut)
		text = strings.TrimPrefix(text[len(cut):], "\n")
	}

	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
