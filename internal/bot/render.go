package bot

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	reserveButtonLabel = "Забронировать"
	releaseButtonLabel = "Снять бронь"
)

var markdownEscaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
	"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
	">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
	".", "\\.", "!", "\\!",
)

// escapeMarkdown escapes every character MarkdownV2 treats as markup.
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// giftMessageText renders a single gift as a MarkdownV2 message body.
func giftMessageText(gift *Gift) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", escapeMarkdown(gift.Title))
	if gift.Link != "" {
		fmt.Fprintf(&b, "🔗 %s\n", escapeMarkdown(gift.Link))
	}
	fmt.Fprintf(&b, "📌 %s", formatReservedBy(gift))
	return b.String()
}

// wishlistItemText renders one /wishlist entry with its 1-based ordinal.
func wishlistItemText(ordinal int, gift *Gift) string {
	status := "✅ Свободен"
	if !gift.IsFree() {
		status = fmt.Sprintf("❌ Забронирован (%s %s)", gift.ReservedByFirstName, gift.ReservedByLastName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d\\. *%s*\n", ordinal, escapeMarkdown(gift.Title))
	if gift.Link != "" {
		fmt.Fprintf(&b, "🔗 %s\n", escapeMarkdown(gift.Link))
	}
	fmt.Fprintf(&b, "📌 %s", escapeMarkdown(status))
	return b.String()
}

// formatReservedBy renders the reservation status, linking the holder's
// Telegram profile when their user ID is known.
func formatReservedBy(gift *Gift) string {
	if gift.IsFree() {
		return "✅ Свободен"
	}

	displayName := strings.TrimSpace(gift.ReservedByFirstName + " " + gift.ReservedByLastName)
	if displayName == "" {
		displayName = "пользователем"
	}

	if gift.ReservedByID != "" {
		return fmt.Sprintf("❌ Забронирован [%s](tg://user?id=%s)", escapeMarkdown(displayName), gift.ReservedByID)
	}
	return "❌ Забронирован " + escapeMarkdown(displayName)
}

// giftKeyboard builds the inline button toggling the gift's reservation. The
// callback payload carries the status the button was rendered against.
func giftKeyboard(gift *Gift) tgbotapi.InlineKeyboardMarkup {
	label := releaseButtonLabel
	if gift.IsFree() {
		label = reserveButtonLabel
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%s", gift.ID, gift.Status)),
		),
	)
}

// extractErrorMessage reduces an API error body to something that fits in a
// callback alert. JSON bodies yield their title or message field; anything
// else is flattened and truncated.
func extractErrorMessage(raw string) string {
	if strings.Contains(raw, "\"title\"") || strings.Contains(raw, "\"message\"") {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &doc); err == nil {
			if msg, ok := stringField(doc, "title"); ok {
				return msg
			}
			if msg, ok := stringField(doc, "message"); ok {
				return msg
			}
			if nested, ok := doc["error"]; ok {
				var inner map[string]json.RawMessage
				if err := json.Unmarshal(nested, &inner); err == nil {
					if msg, ok := stringField(inner, "message"); ok {
						return msg
					}
				}
			}
		}
	}

	clean := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, "\r", ""), "\n", " "))
	// Cut on rune boundaries; a byte slice could split a multibyte character
	// and Telegram rejects invalid UTF-8 outright.
	if runes := []rune(clean); len(runes) > 80 {
		return string(runes[:80]) + "..."
	}
	return clean
}

func stringField(doc map[string]json.RawMessage, key string) (string, bool) {
	v, ok := doc[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}
