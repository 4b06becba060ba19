// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// MaxCategoryNameLength is the column width of categories.name.
const MaxCategoryNameLength = 100

// Category groups videos in the gallery. Names are unique.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryRef is the (id, name) pair returned by the category listing API.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Ref returns the listing form of the category.
func (c *Category) Ref() CategoryRef {
	return CategoryRef{ID: c.ID, Name: c.Name}
}
