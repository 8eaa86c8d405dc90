// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"fmt"
	"html/template"
	"time"

	"mochireviews/internal/models"
)

// Blob states of the Mochimeter.
const (
	BlobFull  = "full"
	BlobHalf  = "half"
	BlobEmpty = "empty"
)

// Meter is the argument of the "mochimeter" partial.
type Meter struct {
	Score float64
	Size  string // "sm", "md" or "lg"
}

// ScaleStep is one band of the Mochimeter verdict scale.
type ScaleStep struct {
	Score float64 // representative score
	Label string
	Range string
}

// MochimeterScale lists the verdict bands shown on the About page. The
// labels match models.Post.Verdict.
var MochimeterScale = []ScaleStep{
	{Score: 9.5, Label: "Essential", Range: "9.0 to 10.0"},
	{Score: 8, Label: "Recommended", Range: "7.0 to 8.5"},
	{Score: 6, Label: "Decent", Range: "5.0 to 6.5"},
	{Score: 3, Label: "Skip it", Range: "0.0 to 4.5"},
}

// mochimeterSize is the number of blobs; each is worth one point.
const mochimeterSize = 10

func funcMap() template.FuncMap {
	return template.FuncMap{
		"badge":       Badge,
		"formatDate":  FormatDate,
		"isoDate":     func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
		"formatScore": FormatScore,
		"mochiBlobs":  MochiBlobs,
		"meter":       func(score float64, size string) Meter { return Meter{Score: score, Size: size} },
		"plural":      Plural,
		// deref safely dereferences a string pointer for use in templates.
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		// safeHTML marks post bodies as trusted. They are sanitized on write.
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}
}

// Badge renders the category badge span.
func Badge(category string) template.HTML {
	c := models.ParseCategory(category)
	return template.HTML(fmt.Sprintf(`<span class="badge %s">%s %s</span>`,
		c.BadgeClass(),
		template.HTMLEscapeString(c.Emoji),
		template.HTMLEscapeString(c.Label),
	))
}

// FormatDate formats t as "January 2, 2006" in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("January 2, 2006")
}

// FormatScore formats a score with one decimal, e.g. 8.5 or 10.0.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.1f", score)
}

// MochiBlobs returns the state of each of the ten Mochimeter blobs. Blob i
// (1-based) is full when score >= i and half when score >= i-0.5.
func MochiBlobs(score float64) []string {
	blobs := make([]string, mochimeterSize)
	for i := range blobs {
		value := float64(i + 1)
		switch {
		case score >= value:
			blobs[i] = BlobFull
		case score >= value-0.5:
			blobs[i] = BlobHalf
		default:
			blobs[i] = BlobEmpty
		}
	}
	return blobs
}

// Plural picks one or many by n.
func Plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
