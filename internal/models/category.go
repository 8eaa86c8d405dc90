// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is the display metadata of a review category. Category keys
// are free-form; the primary ones below carry a label and an emoji, any
// other key is shown as-is with a generic badge.
type Category struct {
	Key   string
	Label string
	Emoji string
	Known bool
}

// Primary category keys.
const (
	CategoryGame  = "game"
	CategoryBook  = "book"
	CategoryTV    = "tv"
	CategoryMovie = "movie"
	CategoryMusic = "music"
)

// customEmoji is shown for categories outside the primary set.
const customEmoji = "📝"

// KnownCategories lists the primary categories in navigation order.
var KnownCategories = []Category{
	{Key: CategoryGame, Label: "Video Game", Emoji: "🎮", Known: true},
	{Key: CategoryBook, Label: "Book", Emoji: "📚", Known: true},
	{Key: CategoryTV, Label: "TV Show", Emoji: "📺", Known: true},
	{Key: CategoryMovie, Label: "Movie", Emoji: "🎬", Known: true},
	{Key: CategoryMusic, Label: "Music Album", Emoji: "🎵", Known: true},
}

// ParseCategory returns the metadata for key. Unknown keys become a custom
// category labelled with the raw key.
func ParseCategory(key string) Category {
	for _, c := range KnownCategories {
		if c.Key == key {
			return c
		}
	}
	return Category{Key: key, Label: key, Emoji: customEmoji}
}

// BadgeClass returns the CSS class used for the category badge.
func (c Category) BadgeClass() string {
	if c.Known {
		return "badge-" + c.Key
	}
	return "badge-custom"
}
