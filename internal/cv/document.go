package cv

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document 是一份简历的内容：一个有序、稠密、ID 唯一的 Section 序列。
// 顺序即渲染顺序，除此之外没有别的排序信号。
type Document struct {
	Sections []Section `json:"sections"`
}

// NewDocument builds the starter document every fresh CV begins with:
// summary, experience, education and skills, in that order, each with a
// freshly generated id.
func NewDocument() Document {
	return Document{
		Sections: []Section{
			{
				ID:      uuid.NewString(),
				Type:    SectionSummary,
				Title:   "Professional Summary",
				Content: SummaryContent{Text: "A brief professional summary"},
			},
			{
				ID:      uuid.NewString(),
				Type:    SectionExperience,
				Title:   "Work Experience",
				Content: ExperienceContent{},
			},
			{
				ID:      uuid.NewString(),
				Type:    SectionEducation,
				Title:   "Education",
				Content: EducationContent{},
			},
			{
				ID:      uuid.NewString(),
				Type:    SectionSkills,
				Title:   "Skills",
				Content: SkillsContent{},
			},
		},
	}
}

// Validate 校验每个 Section 的内容形态，并确保 ID 在文档内唯一。
func (d Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Sections))
	for _, section := range d.Sections {
		if section.ID == "" {
			return fmt.Errorf("%w: section with empty id", ErrInvariantViolation)
		}
		if _, dup := seen[section.ID]; dup {
			return fmt.Errorf("%w: duplicate section id %q", ErrInvariantViolation, section.ID)
		}
		seen[section.ID] = struct{}{}
		if err := section.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy; mutating the copy never aliases the original.
func (d Document) Clone() Document {
	sections := make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		sections[i] = s.clone()
	}
	return Document{Sections: sections}
}

func (d Document) indexOf(id string) int {
	for i, s := range d.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// ParseDocument decodes and validates a raw JSON document payload.
func ParseDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, err
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// CV 是被编辑的简历整体。ID 创建后不可变；任何对 Title、Content、
// Template 的写入都必须推进 UpdatedAt。
type CV struct {
	ID        string
	Title     string
	Content   Document
	Template  TemplateID
	OwnerID   uint
	CreatedAt time.Time
	UpdatedAt time.Time

	// 渲染产物元数据，由 Worker 回写；为空表示尚未生成 PDF。
	PDFObjectKey string
	PreviewURL   string
	Status       string
}

// Patch 描述一次对 CV 的部分更新；nil 字段表示不修改。
type Patch struct {
	Title    *string
	Content  *Document
	Template *TemplateID
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Title == nil && p.Content == nil && p.Template == nil
}
