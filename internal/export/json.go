// Package export 负责把 CV 序列化为可下载的 JSON，以及把内容
// 排到固定尺寸的 A4 页面上供 PDF 渲染。
package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"cvstudio/internal/cv"
)

// cvJSON 固定导出字段顺序：id → title → content → template → 时间戳。
type cvJSON struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   cv.Document   `json:"content"`
	Template  cv.TemplateID `json:"template"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// JSON 返回 CV 的规范化、缩进美化的 JSON 表示。
func JSON(c cv.CV) ([]byte, error) {
	data, err := json.MarshalIndent(cvJSON{
		ID:        c.ID,
		Title:     c.Title,
		Content:   c.Content,
		Template:  c.Template,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cv %q: %w", c.ID, err)
	}
	return data, nil
}

// ParseJSON 把导出产物解析回结构化 CV，content 走完整的形态校验。
func ParseJSON(data []byte) (cv.CV, error) {
	var decoded cvJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return cv.CV{}, fmt.Errorf("decode exported cv: %w", err)
	}
	if err := decoded.Content.Validate(); err != nil {
		return cv.CV{}, err
	}
	return cv.CV{
		ID:        decoded.ID,
		Title:     decoded.Title,
		Content:   decoded.Content,
		Template:  decoded.Template,
		CreatedAt: decoded.CreatedAt,
		UpdatedAt: decoded.UpdatedAt,
	}, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Filename 生成下载文件名：标题中的空白连段替换为单个连字符。
func Filename(title string) string {
	return "cv-" + whitespaceRun.ReplaceAllString(title, "-") + ".json"
}

// PDFFilename 生成 PDF 下载文件名，命名规则与 JSON 导出一致。
func PDFFilename(title string) string {
	return "cv-" + whitespaceRun.ReplaceAllString(title, "-") + ".pdf"
}
