package cv

import "fmt"

// TemplateID 标识内置的简历视觉模板。
type TemplateID string

const (
	TemplateModern   TemplateID = "modern"
	TemplateClassic  TemplateID = "classic"
	TemplateCreative TemplateID = "creative"
)

// DefaultTemplate is applied to newly created CVs.
const DefaultTemplate = TemplateModern

// TemplateInfo 描述模板目录中的一项，用于 GET /v1/templates。
type TemplateInfo struct {
	ID          TemplateID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

var templateCatalog = []TemplateInfo{
	{ID: TemplateModern, Name: "Modern", Description: "Clean and professional design with a modern touch"},
	{ID: TemplateClassic, Name: "Classic", Description: "Traditional CV layout with a timeless design"},
	{ID: TemplateCreative, Name: "Creative", Description: "Bold and innovative layout to stand out"},
}

// Templates returns the built-in template catalog in display order.
func Templates() []TemplateInfo {
	out := make([]TemplateInfo, len(templateCatalog))
	copy(out, templateCatalog)
	return out
}

// ParseTemplate 校验模板 ID。未知 ID 一律拒绝，不做向前兼容透传。
func ParseTemplate(raw string) (TemplateID, error) {
	switch t := TemplateID(raw); t {
	case TemplateModern, TemplateClassic, TemplateCreative:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTemplate, raw)
	}
}
