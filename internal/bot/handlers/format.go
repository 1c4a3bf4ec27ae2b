package handlers

import (
	"strconv"
	"strings"

	"github.com/go-telegram/bot"

	"github.com/edgard/friendbook/internal/client"
)

// escapeMarkdownV2 escapes text for MarkdownV2. The library helper leaves
// backslashes alone, and a trailing one would swallow the closing marker.
func escapeMarkdownV2(s string) string {
	return bot.EscapeMarkdown(strings.ReplaceAll(s, `\`, `\\`))
}

// formatFriendList renders friends as a MarkdownV2 message. Every
// user-supplied value is escaped.
func formatFriendList(header string, friends []client.Friend) string {
	var sb strings.Builder
	sb.WriteString(escapeMarkdownV2(header))
	for _, f := range friends {
		sb.WriteString("\n👤 *")
		sb.WriteString(escapeMarkdownV2(f.Name))
		sb.WriteString("*\n💼 *Profession:* ")
		sb.WriteString(escapeMarkdownV2(f.Profession))
		sb.WriteString("\n")
		if f.PhotoURL != nil && *f.PhotoURL != "" {
			sb.WriteString("🖼️ *Photo URL:* `")
			sb.WriteString(escapeMarkdownV2("(" + *f.PhotoURL + ")"))
			sb.WriteString("`\n")
		}
	}
	return sb.String()
}

// formatFriendListPlain is formatFriendList without markup.
func formatFriendListPlain(header string, friends []client.Friend) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, f := range friends {
		sb.WriteString("\n👤 ")
		sb.WriteString(f.Name)
		sb.WriteString("\n💼 Profession: ")
		sb.WriteString(f.Profession)
		sb.WriteString("\n")
		if f.PhotoURL != nil && *f.PhotoURL != "" {
			sb.WriteString("🖼️ Photo URL: ")
			sb.WriteString(*f.PhotoURL)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// friendCaption renders one friend as MarkdownV2 for a photo caption.
func friendCaption(f *client.Friend) string {
	var sb strings.Builder
	sb.WriteString("👤 *")
	sb.WriteString(escapeMarkdownV2(f.Name))
	sb.WriteString("*\n\n💼 *Profession:* ")
	sb.WriteString(escapeMarkdownV2(f.Profession))
	sb.WriteString("\n")
	if d := f.ProfessionDescription; d != nil && *d != "" {
		sb.WriteString("📝 *Description:* _")
		sb.WriteString(escapeMarkdownV2(*d))
		sb.WriteString("_")
	}
	return sb.String()
}

// friendPlain renders one friend without markup, for the last-resort fallback.
func friendPlain(f *client.Friend) string {
	var sb strings.Builder
	sb.WriteString("👤 ")
	sb.WriteString(f.Name)
	sb.WriteString("\n\n💼 Profession: ")
	sb.WriteString(f.Profession)
	sb.WriteString("\n")
	if d := f.ProfessionDescription; d != nil && *d != "" {
		sb.WriteString("📝 Description: ")
		sb.WriteString(*d)
	}
	return sb.String()
}

// parseFriendID extracts the id argument of "/friend <id>".
func parseFriendID(text string) (int64, bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
