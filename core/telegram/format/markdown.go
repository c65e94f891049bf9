// Package format holds Telegram text formatting helpers.
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

const mdV2Specials = "_*[]()~`>#+-=|{}.!\\"

var (
	mdV1Re = regexp.MustCompile("[_*`\\[]")
	mdV2Re = regexp.MustCompile(charClass(mdV2Specials))
)

// charClass matches any single rune of set. Every rune is escaped so '-' and
// ']' stay literal inside the class.
func charClass(set string) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, r := range set {
		b.WriteByte('\\')
		b.WriteRune(r)
	}
	b.WriteByte(']')
	return b.String()
}

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Re.ReplaceAllString(text, `\${0}`), nil
	case MarkdownV2:
		return mdV2Re.ReplaceAllString(text, `\${0}`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}

// EscapeMD escapes text for legacy Markdown parse mode.
func EscapeMD(text string) string {
	out, _ := EscapeMarkdown(text, MarkdownV1)
	return out
}
