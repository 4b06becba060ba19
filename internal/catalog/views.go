// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "vidshelf/internal/models"

// Section is one category and its videos in id order.
type Section struct {
	Category models.Category
	Videos   []models.Video
}

// Gallery lists every category in storage order, including empty ones.
type Gallery struct {
	Sections []Section
}

// Lookup returns the videos of the category named name.
func (g *Gallery) Lookup(name string) ([]models.Video, bool) {
	for i := range g.Sections {
		if g.Sections[i].Category.Name == name {
			return g.Sections[i].Videos, true
		}
	}
	return nil, false
}

// Len returns the number of categories.
func (g *Gallery) Len() int { return len(g.Sections) }

// Day is one calendar date and the videos created on it, newest first.
type Day struct {
	Date   string // YYYY-MM-DD, UTC
	Videos []models.Video
}

// Calendar groups videos by creation date, most recent date first.
type Calendar struct {
	Days []Day
}

// Lookup returns the videos created on date.
func (c *Calendar) Lookup(date string) ([]models.Video, bool) {
	for i := range c.Days {
		if c.Days[i].Date == date {
			return c.Days[i].Videos, true
		}
	}
	return nil, false
}

// Len returns the number of distinct dates.
func (c *Calendar) Len() int { return len(c.Days) }

// Gallery builds the category-grouped view.
func (s *Service) Gallery() (*Gallery, error) {
	cats, err := s.categories.List()
	if err != nil {
		return nil, err
	}

	g := &Gallery{Sections: make([]Section, 0, len(cats))}
	for _, cat := range cats {
		videos, err := s.videos.ListByCategory(cat.ID)
		if err != nil {
			return nil, err
		}
		g.Sections = append(g.Sections, Section{Category: cat, Videos: videos})
	}
	return g, nil
}

// Calendar builds the date-grouped view. Dates appear in the order first
// seen while walking videos newest first.
func (s *Service) Calendar() (*Calendar, error) {
	videos, err := s.videos.ListByCreatedDesc()
	if err != nil {
		return nil, err
	}

	c := &Calendar{}
	index := make(map[string]int)
	for _, v := range videos {
		key := v.DateKey()
		i, ok := index[key]
		if !ok {
			i = len(c.Days)
			index[key] = i
			c.Days = append(c.Days, Day{Date: key})
		}
		c.Days[i].Videos = append(c.Days[i].Videos, v)
	}
	return c, nil
}
