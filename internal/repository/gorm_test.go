package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cvstudio/internal/cv"
	"cvstudio/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.User{}, &database.CV{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGormRepository_CreateAndGetRoundTrip(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()

	doc := cv.NewDocument()
	created, err := repo.Create(ctx, 1, "Untitled CV", doc, cv.TemplateModern)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("id must be generated")
	}

	got, err := repo.Get(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Untitled CV" || got.Template != cv.TemplateModern {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Content.Sections) != 4 {
		t.Fatalf("jsonb content did not round trip: %d sections", len(got.Content.Sections))
	}
	for i, want := range []cv.SectionType{cv.SectionSummary, cv.SectionExperience, cv.SectionEducation, cv.SectionSkills} {
		if got.Content.Sections[i].Type != want {
			t.Fatalf("section %d: expected %s got %s", i, want, got.Content.Sections[i].Type)
		}
	}
}

func TestGormRepository_OwnerScopingHidesForeignCVs(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, 1, "Mine", cv.NewDocument(), cv.TemplateModern)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 其他属主访问：与不存在同样表现，避免泄露存在性
	if _, err := repo.Get(ctx, created.ID, 2); !errors.Is(err, cv.ErrNotFound) {
		t.Fatalf("expected cv.ErrNotFound for foreign owner, got %v", err)
	}
	title := "stolen"
	if _, err := repo.Update(ctx, created.ID, 2, cv.Patch{Title: &title}); !errors.Is(err, cv.ErrNotFound) {
		t.Fatalf("foreign update must be cv.ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, created.ID, 2); err != nil {
		t.Fatalf("foreign delete must be silent no-op: %v", err)
	}
	if _, err := repo.Get(ctx, created.ID, 1); err != nil {
		t.Fatalf("foreign delete must not remove the cv: %v", err)
	}
}

func TestGormRepository_ListNewestUpdatedFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormRepository(db)
	ctx := context.Background()

	older, err := repo.Create(ctx, 1, "older", cv.NewDocument(), cv.TemplateModern)
	if err != nil {
		t.Fatalf("create older: %v", err)
	}
	newer, err := repo.Create(ctx, 1, "newer", cv.NewDocument(), cv.TemplateClassic)
	if err != nil {
		t.Fatalf("create newer: %v", err)
	}
	if _, err := repo.Create(ctx, 2, "foreign", cv.NewDocument(), cv.TemplateModern); err != nil {
		t.Fatalf("create foreign: %v", err)
	}

	// 显式拉开 updated_at，避免同一毫秒内创建导致排序不稳定
	if err := db.Model(&database.CV{}).Where("id = ?", older.ID).
		UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	list, err := repo.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("owner scoping failed, got %d cvs", len(list))
	}
	if list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("expected newest-updated first, got [%s %s]", list[0].Title, list[1].Title)
	}
}

func TestGormRepository_UpdatePatchSemantics(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, 1, "Before", cv.NewDocument(), cv.TemplateModern)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	doc := created.Content.Clone()
	doc.Sections = doc.Sections[:2]
	template := cv.TemplateCreative
	updated, err := repo.Update(ctx, created.ID, 1, cv.Patch{Content: &doc, Template: &template})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != "Before" {
		t.Fatalf("unpatched title must be preserved, got %q", updated.Title)
	}
	if updated.Template != cv.TemplateCreative {
		t.Fatalf("template not applied")
	}
	if len(updated.Content.Sections) != 2 {
		t.Fatalf("content not applied: %d sections", len(updated.Content.Sections))
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Fatalf("UpdatedAt must never precede CreatedAt")
	}
}

func TestGormRepository_UpdateRenderKeepsUpdatedAt(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, 1, "CV", cv.NewDocument(), cv.TemplateModern)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	render := RenderState{PDFObjectKey: "generated-cvs/1/a.pdf", PreviewURL: "https://example.invalid/p.jpg", Status: "completed"}
	if err := repo.UpdateRender(ctx, created.ID, 1, render); err != nil {
		t.Fatalf("update render: %v", err)
	}

	got, err := repo.Get(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PDFObjectKey != render.PDFObjectKey || got.Status != "completed" {
		t.Fatalf("render state not stored: %+v", got)
	}
	if !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("render metadata write must not advance UpdatedAt")
	}
}
