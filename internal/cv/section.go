package cv

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// SectionType 是 Section 的封闭类型集合。
type SectionType string

const (
	SectionSummary    SectionType = "summary"
	SectionExperience SectionType = "experience"
	SectionEducation  SectionType = "education"
	SectionSkills     SectionType = "skills"
	SectionProjects   SectionType = "projects"
	SectionContact    SectionType = "contact"
)

// ParseSectionType validates a raw type string against the closed set.
func ParseSectionType(raw string) (SectionType, error) {
	switch t := SectionType(raw); t {
	case SectionSummary, SectionExperience, SectionEducation, SectionSkills, SectionProjects, SectionContact:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown section type %q", ErrShapeMismatch, raw)
	}
}

// SectionContent 是按 type 封闭的内容变体（tagged union）。
// 每个变体的 JSON 形态与前端/导出格式保持一致：
// summary 是裸字符串，列表类型是数组，contact 是对象。
type SectionContent interface {
	SectionType() SectionType
	Validate() error
	clone() SectionContent
}

// SummaryContent holds the free-text professional summary.
// It marshals as a bare JSON string, not an object.
type SummaryContent struct {
	Text string
}

func (SummaryContent) SectionType() SectionType { return SectionSummary }

func (c SummaryContent) Validate() error {
	return validation.Validate(c.Text, validation.RuneLength(0, 4000))
}

func (c SummaryContent) clone() SectionContent { return c }

func (c SummaryContent) MarshalJSON() ([]byte, error) { return json.Marshal(c.Text) }

func (c *SummaryContent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &c.Text)
}

// ExperienceItem 表示一段工作经历。
type ExperienceItem struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Period      string `json:"period"`
	Description string `json:"description"`
}

func (i ExperienceItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Title, validation.RuneLength(0, 200)),
		validation.Field(&i.Company, validation.RuneLength(0, 200)),
		validation.Field(&i.Period, validation.RuneLength(0, 100)),
	)
}

// ExperienceContent is an ordered list of experience entries.
type ExperienceContent []ExperienceItem

func (ExperienceContent) SectionType() SectionType { return SectionExperience }

func (c ExperienceContent) Validate() error {
	for idx, item := range c {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("experience item %d: %w", idx, err)
		}
	}
	return nil
}

func (c ExperienceContent) clone() SectionContent {
	out := make(ExperienceContent, len(c))
	copy(out, c)
	return out
}

// EducationItem 表示一段教育经历。
type EducationItem struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Period      string `json:"period"`
}

func (i EducationItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Degree, validation.RuneLength(0, 200)),
		validation.Field(&i.Institution, validation.RuneLength(0, 200)),
		validation.Field(&i.Period, validation.RuneLength(0, 100)),
	)
}

// EducationContent is an ordered list of education entries.
type EducationContent []EducationItem

func (EducationContent) SectionType() SectionType { return SectionEducation }

func (c EducationContent) Validate() error {
	for idx, item := range c {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("education item %d: %w", idx, err)
		}
	}
	return nil
}

func (c EducationContent) clone() SectionContent {
	out := make(EducationContent, len(c))
	copy(out, c)
	return out
}

// SkillsContent is an ordered list of plain skill labels.
type SkillsContent []string

func (SkillsContent) SectionType() SectionType { return SectionSkills }

func (c SkillsContent) Validate() error {
	for idx, skill := range c {
		if err := validation.Validate(skill, validation.Required, validation.RuneLength(1, 100)); err != nil {
			return fmt.Errorf("skill %d: %w", idx, err)
		}
	}
	return nil
}

func (c SkillsContent) clone() SectionContent {
	out := make(SkillsContent, len(c))
	copy(out, c)
	return out
}

// ProjectItem 表示一个项目条目。
type ProjectItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Period      string `json:"period"`
}

func (i ProjectItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.RuneLength(0, 200)),
		validation.Field(&i.Link, is.URL),
	)
}

// ProjectsContent is an ordered list of project entries.
type ProjectsContent []ProjectItem

func (ProjectsContent) SectionType() SectionType { return SectionProjects }

func (c ProjectsContent) Validate() error {
	for idx, item := range c {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("project item %d: %w", idx, err)
		}
	}
	return nil
}

func (c ProjectsContent) clone() SectionContent {
	out := make(ProjectsContent, len(c))
	copy(out, c)
	return out
}

// ContactContent holds the contact block. PhotoKey references an uploaded
// asset object key, resolved to a URL only at render time.
type ContactContent struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Website  string `json:"website"`
	PhotoKey string `json:"photo_key,omitempty"`
}

func (ContactContent) SectionType() SectionType { return SectionContact }

func (c ContactContent) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, is.Email),
		validation.Field(&c.Website, is.URL),
		validation.Field(&c.Phone, validation.RuneLength(0, 50)),
	)
}

func (c ContactContent) clone() SectionContent { return c }

// Section 是 Document 中一个带类型、标题与内容的块。
// ID 在单个 Document 内唯一；Type 决定 Content 的具体变体。
type Section struct {
	ID      string
	Type    SectionType
	Title   string
	Content SectionContent
}

// Validate checks that the content variant agrees with the declared type
// and that the variant's own field rules hold.
func (s Section) Validate() error {
	if _, err := ParseSectionType(string(s.Type)); err != nil {
		return err
	}
	if s.Content == nil {
		return fmt.Errorf("%w: section %q has no content", ErrShapeMismatch, s.ID)
	}
	if s.Content.SectionType() != s.Type {
		return fmt.Errorf("%w: section %q declares %s but holds %s content",
			ErrShapeMismatch, s.ID, s.Type, s.Content.SectionType())
	}
	if err := s.Content.Validate(); err != nil {
		return fmt.Errorf("section %q: %w", s.ID, err)
	}
	return nil
}

func (s Section) clone() Section {
	if s.Content != nil {
		s.Content = s.Content.clone()
	}
	return s
}

type sectionEnvelope struct {
	ID      string          `json:"id"`
	Type    SectionType     `json:"type"`
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON emits the frontend-compatible envelope
// {"id":..,"type":..,"title":..,"content":<variant>}.
func (s Section) MarshalJSON() ([]byte, error) {
	content, err := json.Marshal(s.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal section %q content: %w", s.ID, err)
	}
	return json.Marshal(sectionEnvelope{
		ID:      s.ID,
		Type:    s.Type,
		Title:   s.Title,
		Content: content,
	})
}

// UnmarshalJSON dispatches the content payload on the declared type.
// A payload whose shape does not match yields ErrShapeMismatch.
func (s *Section) UnmarshalJSON(data []byte) error {
	var env sectionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode section envelope: %w", err)
	}

	sectionType, err := ParseSectionType(string(env.Type))
	if err != nil {
		return err
	}

	content, err := decodeContent(sectionType, env.Content)
	if err != nil {
		return fmt.Errorf("%w: section %q (%s): %v", ErrShapeMismatch, env.ID, sectionType, err)
	}

	s.ID = env.ID
	s.Type = sectionType
	s.Title = env.Title
	s.Content = content
	return nil
}

func decodeContent(t SectionType, raw json.RawMessage) (SectionContent, error) {
	if len(raw) == 0 {
		return zeroContent(t), nil
	}

	switch t {
	case SectionSummary:
		var c SummaryContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case SectionExperience:
		var c ExperienceContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case SectionEducation:
		var c EducationContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case SectionSkills:
		var c SkillsContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case SectionProjects:
		var c ProjectsContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case SectionContact:
		var c ContactContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown section type %q", t)
	}
}

// zeroContent 返回某个类型的初始内容：summary 为空字符串，列表类型为空序列。
func zeroContent(t SectionType) SectionContent {
	switch t {
	case SectionSummary:
		return SummaryContent{}
	case SectionExperience:
		return ExperienceContent{}
	case SectionEducation:
		return EducationContent{}
	case SectionSkills:
		return SkillsContent{}
	case SectionProjects:
		return ProjectsContent{}
	case SectionContact:
		return ContactContent{}
	default:
		return nil
	}
}
