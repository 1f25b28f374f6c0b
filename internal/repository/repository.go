// Package repository 是 CV 集合的 Persistence Gateway：
// 一个接口、两种后端（进程内存 / PostgreSQL），由配置选择，
// 调用方（HTTP 层与 Worker）对后端完全无感知。
package repository

import (
	"context"

	"cvstudio/internal/cv"
)

// RenderState 记录一次 PDF 渲染的产物位置与状态。
// 写入渲染元数据不推进 UpdatedAt——它不是用户对文档的编辑。
type RenderState struct {
	PDFObjectKey string
	PreviewURL   string
	Status       string
}

// Repository 是 CV 持久化的统一契约。
//
// ownerID 在内存后端被忽略（演示模式没有多租户），在数据库后端参与
// 每一条查询；属主不匹配与不存在同样返回 cv.ErrNotFound，避免泄露存在性。
// Update 是 last-write-wins：不带版本号，后写覆盖先写（见 DESIGN.md）。
type Repository interface {
	// List 返回属主的全部 CV。数据库后端按 updated_at 倒序；
	// 内存后端忽略属主并按插入顺序返回。
	List(ctx context.Context, ownerID uint) ([]cv.CV, error)

	// Get 返回一份 CV，缺失或属主不符返回 cv.ErrNotFound。
	Get(ctx context.Context, id string, ownerID uint) (cv.CV, error)

	// Create 生成 ID 与时间戳并保存；创建瞬间 CreatedAt == UpdatedAt。
	Create(ctx context.Context, ownerID uint, title string, content cv.Document, template cv.TemplateID) (cv.CV, error)

	// Update 合并补丁并刷新 UpdatedAt，缺失返回 cv.ErrNotFound。
	Update(ctx context.Context, id string, ownerID uint, patch cv.Patch) (cv.CV, error)

	// Delete 删除 CV；缺失时为幂等 no-op。
	Delete(ctx context.Context, id string, ownerID uint) error

	// UpdateRender 记录 Worker 的渲染结果。
	UpdateRender(ctx context.Context, id string, ownerID uint, render RenderState) error
}
