package format

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

const mdV2Specials = "_*[]()~`>#+=|{}.!\\-"

var (
	mdV1Re = regexp.MustCompile("([_*`\\[])")
	mdV2Re = regexp.MustCompile("([" + regexp.QuoteMeta(mdV2Specials) + "])")
)

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Re.ReplaceAllString(text, `\$1`), nil
	case MarkdownV2:
		return mdV2Re.ReplaceAllString(text, `\$1`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}

// Escape is EscapeMarkdown for the legacy Markdown mode used by the bot.
func Escape(text string) string {
	s, _ := EscapeMarkdown(text, MarkdownV1)
	return s
}

// Bold wraps text in MarkdownV1 bold markers. Legacy Markdown cannot escape
// inside an entity, so each special character is emitted escaped between
// two bold runs: "5*star" becomes *5*\**star*.
func Bold(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range mdV1Re.FindAllStringIndex(text, -1) {
		boldRun(&b, text[last:loc[0]])
		b.WriteByte('\\')
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	boldRun(&b, text[last:])
	return b.String()
}

func boldRun(b *strings.Builder, run string) {
	if run == "" {
		return
	}
	b.WriteByte('*')
	b.WriteString(run)
	b.WriteByte('*')
}
