// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
	"time"

	"vidshelf/internal/models"
)

func TestVideoStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	s := NewVideoStore(db)
	cat := mustCategory(t, cats, "Music")

	at := time.Date(2026, 4, 2, 8, 30, 15, 0, time.UTC)

	remote, err := s.Create(&models.Video{
		Title:         "Remote clip",
		ThumbnailFile: "yt_20260402083015.jpg",
		CategoryID:    cat.ID,
		CreatedAt:     at,
		Source:        models.RemoteSource{URL: "https://www.youtube.com/watch?v=abc"},
	})
	if err != nil {
		t.Fatalf("Create remote: %v", err)
	}
	if remote.ID == 0 {
		t.Error("expected generated ID")
	}
	if !remote.IsRemote() || remote.RemoteURL() != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("remote source: got %#v", remote.Source)
	}
	if !remote.CreatedAt.Equal(at) {
		t.Errorf("created_at: got %v, want %v", remote.CreatedAt, at)
	}

	local, err := s.Create(&models.Video{
		Title:         "Local clip",
		ThumbnailFile: "video_20260402083016.jpg",
		CategoryID:    cat.ID,
		CreatedAt:     at.Add(time.Second),
		Source:        models.LocalSource{Filename: "20260402083016_clip.mp4"},
	})
	if err != nil {
		t.Fatalf("Create local: %v", err)
	}

	found, err := s.FindByID(local.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected video, got nil")
	}
	if found.IsRemote() {
		t.Error("local video came back as remote")
	}
	if found.LocalFile() != "20260402083016_clip.mp4" {
		t.Errorf("local file: got %q", found.LocalFile())
	}
	if found.Title != "Local clip" || found.CategoryID != cat.ID {
		t.Errorf("fields: got %+v", found)
	}

	// Not found.
	if found, _ := s.FindByID(9999); found != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestVideoStoreCreateRejectsInvalid(t *testing.T) {
	db := testDB(t)
	s := NewVideoStore(db)

	_, err := s.Create(&models.Video{Title: "No source", ThumbnailFile: "x.jpg", CategoryID: 1})
	if err == nil {
		t.Error("expected error for video without source")
	}

	_, err = s.Create(&models.Video{
		Title: "Unknown category", ThumbnailFile: "x.jpg", CategoryID: 42,
		CreatedAt: time.Now(), Source: models.RemoteSource{URL: "https://youtu.be/x"},
	})
	if err == nil {
		t.Error("expected foreign key error for unknown category")
	}

	n, _ := s.Count()
	if n != 0 {
		t.Errorf("count after rejected inserts: got %d, want 0", n)
	}
}

func TestVideoStoreListings(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	s := NewVideoStore(db)
	a := mustCategory(t, cats, "A")
	b := mustCategory(t, cats, "B")

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	add := func(title string, cat int64, at time.Time) {
		t.Helper()
		if _, err := s.Create(&models.Video{
			Title: title, ThumbnailFile: title + ".jpg", CategoryID: cat, CreatedAt: at,
			Source: models.RemoteSource{URL: "https://youtu.be/" + title},
		}); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}
	// Inserted out of chronological order on purpose.
	add("a1", a.ID, base.Add(2*time.Hour))
	add("b1", b.ID, base)
	add("a2", a.ID, base.Add(-24*time.Hour))
	add("a3", a.ID, base.Add(500*time.Millisecond))

	byCat, err := s.ListByCategory(a.ID)
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	wantCat := []string{"a1", "a2", "a3"}
	if len(byCat) != len(wantCat) {
		t.Fatalf("ListByCategory length: got %d, want %d", len(byCat), len(wantCat))
	}
	for i, v := range byCat {
		if v.Title != wantCat[i] {
			t.Errorf("ListByCategory[%d]: got %q, want %q", i, v.Title, wantCat[i])
		}
	}

	desc, err := s.ListByCreatedDesc()
	if err != nil {
		t.Fatalf("ListByCreatedDesc: %v", err)
	}
	wantDesc := []string{"a1", "a3", "b1", "a2"}
	if len(desc) != len(wantDesc) {
		t.Fatalf("ListByCreatedDesc length: got %d, want %d", len(desc), len(wantDesc))
	}
	for i, v := range desc {
		if v.Title != wantDesc[i] {
			t.Errorf("ListByCreatedDesc[%d]: got %q, want %q", i, v.Title, wantDesc[i])
		}
	}
}

func TestVideoStoreDelete(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	s := NewVideoStore(db)
	cat := mustCategory(t, cats, "Del")

	v, err := s.Create(&models.Video{
		Title: "Doomed", ThumbnailFile: "video_1.jpg", CategoryID: cat.ID,
		CreatedAt: time.Now(), Source: models.LocalSource{Filename: "doomed.mp4"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := s.Delete(v.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted == nil {
		t.Fatal("expected deleted video record returned")
	}
	if deleted.LocalFile() != "doomed.mp4" || deleted.ThumbnailFile != "video_1.jpg" {
		t.Errorf("deleted row: got %+v", deleted)
	}

	// Verify gone.
	if found, _ := s.FindByID(v.ID); found != nil {
		t.Error("expected nil after delete")
	}

	// Delete nonexistent: should return nil.
	deleted, err = s.Delete(9999)
	if err != nil {
		t.Fatalf("Delete unknown: %v", err)
	}
	if deleted != nil {
		t.Error("expected nil for nonexistent delete")
	}
}
