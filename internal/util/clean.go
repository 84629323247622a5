package util

import (
	"bytes"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var charReplacementMap = map[string]string{
	"\u2018": "'", "\u2019": "'", "\u201C": "\"", "\u201D": "\"",
	"\u2013": "-", "\u2014": "--", "\u2026": "...", "\u00a0": " ",
	"\u0096": "-", "\u0097": "--", "\u0091": "'", "\u0092": "'",
	"\u0093": "\"", "\u0094": "\"", "\u200B": "",
}

// NormalizeMessage prepares user text for classification: invalid UTF-8 is
// replaced, typographic punctuation is flattened to ASCII, a pasted HTML
// document is reduced to its text, and runs of whitespace collapse to one
// space. When cleanup leaves nothing, the trimmed input is returned as is, so
// only whitespace-only input normalizes to "".
func NormalizeMessage(raw string) string {
	b := bytes.TrimPrefix([]byte(raw), utf8BOM)
	if !utf8.Valid(b) {
		log.Debug("Message contains invalid UTF-8, replacing invalid chars")
		b = bytes.ToValidUTF8(b, []byte(string(utf8.RuneError)))
	}

	str := string(b)
	for bad, good := range charReplacementMap {
		str = strings.ReplaceAll(str, bad, good)
	}
	str = collapseSpace(str)
	if looksLikeHTML(str) {
		if text := collapseSpace(extractText(str)); text != "" {
			str = text
		}
	}
	if str == "" {
		return strings.TrimSpace(raw)
	}
	return str
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// looksLikeHTML reports whether s is a markup document: it opens with a tag
// and closes with one. Stray angle brackets inside prose do not count.
func looksLikeHTML(s string) bool {
	if len(s) < 3 || s[0] != '<' || s[len(s)-1] != '>' {
		return false
	}
	next := s[1]
	if next != '!' && (next|0x20 < 'a' || next|0x20 > 'z') {
		return false
	}
	return strings.Contains(s, "</") || strings.Contains(s, "/>")
}

// extractText keeps text nodes and drops tags, scripts and styles.
func extractText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var out strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
			out.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			out.WriteByte(' ')
		case html.SelfClosingTagToken:
			out.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				out.Write(z.Text())
			}
		}
	}
}
