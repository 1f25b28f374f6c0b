package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cvstudio/internal/cv"
)

// MemoryRepository 是进程内的临时后端：不分属主、进程重启即丢失。
// 这是刻意的演示模式，不是缺陷；生命周期由注入方控制，
// 每个测试都可以构造独立实例，不存在包级单例。
type MemoryRepository struct {
	mu  sync.Mutex
	cvs []cv.CV

	now func() time.Time
}

// NewMemoryRepository 构造空的内存后端。
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

var _ Repository = (*MemoryRepository)(nil)

// List 按插入顺序返回全部 CV，忽略 ownerID。
func (r *MemoryRepository) List(_ context.Context, _ uint) ([]cv.CV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]cv.CV, len(r.cvs))
	for i, c := range r.cvs {
		out[i] = cloneCV(c)
	}
	return out, nil
}

// Get 返回指定 CV，缺失返回 cv.ErrNotFound。
func (r *MemoryRepository) Get(_ context.Context, id string, _ uint) (cv.CV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return cv.CV{}, fmt.Errorf("%w: cv %q", cv.ErrNotFound, id)
	}
	return cloneCV(r.cvs[idx]), nil
}

// Create 追加一份新 CV。
func (r *MemoryRepository) Create(_ context.Context, ownerID uint, title string, content cv.Document, template cv.TemplateID) (cv.CV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	record := cv.CV{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content.Clone(),
		Template:  template,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.cvs = append(r.cvs, record)
	return cloneCV(record), nil
}

// Update 合并补丁并刷新 UpdatedAt；last-write-wins。
func (r *MemoryRepository) Update(_ context.Context, id string, _ uint, patch cv.Patch) (cv.CV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return cv.CV{}, fmt.Errorf("%w: cv %q", cv.ErrNotFound, id)
	}

	record := r.cvs[idx]
	if patch.Title != nil {
		record.Title = *patch.Title
	}
	if patch.Content != nil {
		record.Content = patch.Content.Clone()
	}
	if patch.Template != nil {
		record.Template = *patch.Template
	}
	record.UpdatedAt = r.now()
	if record.UpdatedAt.Before(record.CreatedAt) {
		record.UpdatedAt = record.CreatedAt
	}

	r.cvs[idx] = record
	return cloneCV(record), nil
}

// Delete 删除指定 CV；缺失时静默成功。
func (r *MemoryRepository) Delete(_ context.Context, id string, _ uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil
	}
	r.cvs = append(r.cvs[:idx], r.cvs[idx+1:]...)
	return nil
}

// UpdateRender 回写渲染产物，不触碰 UpdatedAt。
func (r *MemoryRepository) UpdateRender(_ context.Context, id string, _ uint, render RenderState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: cv %q", cv.ErrNotFound, id)
	}
	r.cvs[idx].PDFObjectKey = render.PDFObjectKey
	r.cvs[idx].PreviewURL = render.PreviewURL
	r.cvs[idx].Status = render.Status
	return nil
}

func (r *MemoryRepository) indexOf(id string) int {
	for i, c := range r.cvs {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func cloneCV(c cv.CV) cv.CV {
	c.Content = c.Content.Clone()
	return c
}
