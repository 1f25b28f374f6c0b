package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"cvstudio/internal/cv"
)

func TestMemoryRepository_CreateSetsIdentityAndTimestamps(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, 0, "Untitled CV", cv.NewDocument(), cv.TemplateModern)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.ID == "" {
		t.Fatal("created cv must have a non-empty id")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("at creation instant CreatedAt must equal UpdatedAt: %v != %v", created.CreatedAt, created.UpdatedAt)
	}
	if len(created.Content.Sections) != 4 {
		t.Fatalf("expected 4 starter sections, got %d", len(created.Content.Sections))
	}
}

func TestMemoryRepository_GetAndNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, 0, "CV", cv.NewDocument(), cv.TemplateModern)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, created.ID, 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID || got.Title != "CV" {
		t.Fatalf("get returned wrong record: %+v", got)
	}

	if _, err := repo.Get(ctx, "missing", 0); !errors.Is(err, cv.ErrNotFound) {
		t.Fatalf("expected cv.ErrNotFound, got %v", err)
	}
}

func TestMemoryRepository_UpdateMergesAndAdvancesUpdatedAt(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	created, err := repo.Create(ctx, 0, "Before", cv.NewDocument(), cv.TemplateModern)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clock = base.Add(time.Minute)
	title := "After"
	template := cv.TemplateClassic
	updated, err := repo.Update(ctx, created.ID, 0, cv.Patch{Title: &title, Template: &template})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != "After" || updated.Template != cv.TemplateClassic {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if !reflect.DeepEqual(updated.Content, created.Content) {
		t.Fatalf("content must be untouched by a title/template patch")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("UpdatedAt must advance on write: %v <= %v", updated.UpdatedAt, created.UpdatedAt)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Fatalf("CreatedAt must be immutable")
	}

	if _, err := repo.Update(ctx, "missing", 0, cv.Patch{Title: &title}); !errors.Is(err, cv.ErrNotFound) {
		t.Fatalf("expected cv.ErrNotFound, got %v", err)
	}
}

func TestMemoryRepository_DeleteIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, 0, "CV", cv.NewDocument(), cv.TemplateModern)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(ctx, created.ID, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, created.ID, 0); !errors.Is(err, cv.ErrNotFound) {
		t.Fatalf("deleted cv still present")
	}
	// 再删一次仍然成功
	if err := repo.Delete(ctx, created.ID, 0); err != nil {
		t.Fatalf("repeat delete must be a no-op: %v", err)
	}
}

func TestMemoryRepository_ListInsertionOrderIgnoresOwner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first, _ := repo.Create(ctx, 1, "first", cv.NewDocument(), cv.TemplateModern)
	second, _ := repo.Create(ctx, 2, "second", cv.NewDocument(), cv.TemplateModern)

	// 演示后端没有属主隔离：任何 ownerID 都能看到全部
	all, err := repo.List(ctx, 99)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
		t.Fatalf("expected insertion order [first second], got %+v", all)
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, _ := repo.Create(ctx, 0, "CV", cv.NewDocument(), cv.TemplateModern)

	got, _ := repo.Get(ctx, created.ID, 0)
	got.Content.Sections[0].Title = "tampered"

	again, _ := repo.Get(ctx, created.ID, 0)
	if again.Content.Sections[0].Title == "tampered" {
		t.Fatal("repository must not alias returned documents")
	}
}
