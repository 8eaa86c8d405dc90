// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package richtext handles the HTML produced by the admin editor: it
// sanitizes untrusted markup before storage and inspects stored markup
// for emptiness and plain-text excerpts.
package richtext

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// policy is the sanitizer applied to every post body. The UGC policy keeps
// headings, lists, links, images, tables and inline formatting, and strips
// scripts, event handlers and styles.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("p", "span", "div", "code", "pre")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// mediaSelector lists elements that count as content even without text.
const mediaSelector = "img, iframe, video, audio, hr"

// Sanitize returns html with every disallowed element and attribute removed.
func Sanitize(html string) string {
	return strings.TrimSpace(policy.Sanitize(html))
}

// IsEmpty reports whether html carries no visible content: no text other
// than whitespace and no media elements. The editor's blank document
// "<p></p>" is empty.
func IsEmpty(html string) bool {
	if strings.TrimSpace(html) == "" {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return true
	}
	if doc.Find(mediaSelector).Length() > 0 {
		return false
	}
	return strings.TrimSpace(doc.Text()) == ""
}

// PlainText extracts the text of html with whitespace collapsed and
// truncates it to at most max runes, ending with an ellipsis when cut.
// A max of zero or less disables truncation.
func PlainText(html string, max int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	// Block-level elements are joined with a space so adjacent paragraphs
	// don't run together.
	var parts []string
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")

	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := strings.TrimRight(string(runes[:max]), " ")
	return cut + "…"
}
