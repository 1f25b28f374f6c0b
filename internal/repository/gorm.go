package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cvstudio/internal/cv"
	"cvstudio/internal/database"
)

// GormRepository 是持久化后端：每份 CV 一行，所有查询都带属主条件。
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository 构造数据库后端。
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var _ Repository = (*GormRepository)(nil)

// List 返回属主的全部 CV，最近更新的在前。
func (r *GormRepository) List(ctx context.Context, ownerID uint) ([]cv.CV, error) {
	var rows []database.CV
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cvs: %w", err)
	}

	out := make([]cv.CV, 0, len(rows))
	for _, row := range rows {
		record, err := fromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// Get 返回一份 CV；不存在或属主不符均映射为 cv.ErrNotFound。
func (r *GormRepository) Get(ctx context.Context, id string, ownerID uint) (cv.CV, error) {
	row, err := r.find(ctx, id, ownerID)
	if err != nil {
		return cv.CV{}, err
	}
	return fromModel(*row)
}

// Create 生成 UUID 与时间戳并插入新行。
func (r *GormRepository) Create(ctx context.Context, ownerID uint, title string, content cv.Document, template cv.TemplateID) (cv.CV, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return cv.CV{}, fmt.Errorf("marshal content: %w", err)
	}

	row := database.CV{
		ID:       uuid.NewString(),
		Title:    title,
		Content:  datatypes.JSON(raw),
		Template: string(template),
		UserID:   ownerID,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return cv.CV{}, fmt.Errorf("create cv: %w", err)
	}
	return fromModel(row)
}

// Update 合并补丁；gorm 的 Updates 会刷新 updated_at。无并发令牌，
// 两个会话同时编辑同一份 CV 时后写覆盖先写。
func (r *GormRepository) Update(ctx context.Context, id string, ownerID uint, patch cv.Patch) (cv.CV, error) {
	row, err := r.find(ctx, id, ownerID)
	if err != nil {
		return cv.CV{}, err
	}

	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		raw, err := json.Marshal(*patch.Content)
		if err != nil {
			return cv.CV{}, fmt.Errorf("marshal content: %w", err)
		}
		updates["content"] = datatypes.JSON(raw)
	}
	if patch.Template != nil {
		updates["template"] = string(*patch.Template)
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := r.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
			return cv.CV{}, fmt.Errorf("update cv: %w", err)
		}
		if err := r.db.WithContext(ctx).First(row, "id = ?", row.ID).Error; err != nil {
			return cv.CV{}, fmt.Errorf("reload cv: %w", err)
		}
	}

	return fromModel(*row)
}

// Delete 删除属主的 CV；目标缺失时视为成功（幂等）。
func (r *GormRepository) Delete(ctx context.Context, id string, ownerID uint) error {
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&database.CV{}).Error; err != nil {
		return fmt.Errorf("delete cv: %w", err)
	}
	return nil
}

// UpdateRender 回写渲染产物。UpdateColumns 跳过 gorm 钩子，
// 渲染元数据不推进 updated_at，不扰动列表排序。
func (r *GormRepository) UpdateRender(ctx context.Context, id string, ownerID uint, render RenderState) error {
	row, err := r.find(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Model(row).UpdateColumns(map[string]any{
		"pdf_object_key":    render.PDFObjectKey,
		"preview_image_url": render.PreviewURL,
		"status":            render.Status,
	}).Error; err != nil {
		return fmt.Errorf("update render state: %w", err)
	}
	return nil
}

func (r *GormRepository) find(ctx context.Context, id string, ownerID uint) (*database.CV, error) {
	var row database.CV
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cv %q", cv.ErrNotFound, id)
		}
		return nil, fmt.Errorf("query cv: %w", err)
	}
	return &row, nil
}

func fromModel(row database.CV) (cv.CV, error) {
	doc, err := cv.ParseDocument(row.Content)
	if err != nil {
		return cv.CV{}, fmt.Errorf("decode cv %q content: %w", row.ID, err)
	}
	return cv.CV{
		ID:           row.ID,
		Title:        row.Title,
		Content:      doc,
		Template:     cv.TemplateID(row.Template),
		OwnerID:      row.UserID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		PDFObjectKey: row.PDFObjectKey,
		PreviewURL:   row.PreviewImageURL,
		Status:       row.Status,
	}, nil
}
