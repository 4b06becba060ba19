// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"vidshelf/internal/models"
)

// AddCategory creates a category named name (trimmed). A blank name or an
// existing name is a silent no-op; created reports whether a row was added.
func (s *Service) AddCategory(name string) (cat *models.Category, created bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, nil
	}
	if utf8.RuneCountInString(name) > models.MaxCategoryNameLength {
		return nil, false, fmt.Errorf("%w: category name longer than %d characters", ErrInvalidInput, models.MaxCategoryNameLength)
	}

	cat, created, err = s.categories.CreateIfAbsent(name, s.now())
	if err != nil {
		return nil, false, err
	}
	if created {
		slog.Info("category created", "id", cat.ID, "name", cat.Name)
		s.changed()
	}
	return cat, created, nil
}

// Categories returns every category as an (id, name) pair in storage order.
func (s *Service) Categories() ([]models.CategoryRef, error) {
	cats, err := s.categories.List()
	if err != nil {
		return nil, err
	}
	refs := make([]models.CategoryRef, 0, len(cats))
	for i := range cats {
		refs = append(refs, cats[i].Ref())
	}
	return refs, nil
}

// DeleteCategory removes an empty category. Categories that still own
// videos are refused with ErrCategoryNotEmpty.
func (s *Service) DeleteCategory(id int64) error {
	cat, err := s.categories.FindByID(id)
	if err != nil {
		return err
	}
	if cat == nil {
		return ErrNotFound
	}

	count, err := s.categories.CountVideos(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %q has %d", ErrCategoryNotEmpty, cat.Name, count)
	}

	deleted, err := s.categories.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	slog.Info("category deleted", "id", id, "name", cat.Name)
	s.changed()
	return nil
}

// categoryExists resolves a submitted category id.
func (s *Service) categoryExists(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	cat, err := s.categories.FindByID(id)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("%w: category %d does not exist", ErrInvalidInput, id)
	}
	return nil
}
