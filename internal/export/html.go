package export

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"cvstudio/internal/cv"
)

// PhotoResolver 把联系区块中的照片对象键换成可嵌入的 URL
// （Worker 注入的实现会从对象存储取回图片并编码为 data URI）。
// 返回空字符串表示照片缺失，渲染时跳过。
type PhotoResolver func(ctx context.Context, objectKey string) (string, error)

// Renderer 把 CV 渲染为自带分页的打印友好 HTML。
type Renderer struct {
	photos PhotoResolver
}

// NewRenderer 构造渲染器。resolver 可以为 nil，此时照片一律跳过。
func NewRenderer(resolver PhotoResolver) *Renderer {
	return &Renderer{photos: resolver}
}

type contactView struct {
	Email    string
	Phone    string
	Location string
	Website  string
	PhotoSrc template.URL
}

type sectionView struct {
	Kind       string
	Title      string
	Summary    string
	Experience []cv.ExperienceItem
	Education  []cv.EducationItem
	Skills     []string
	Projects   []cv.ProjectItem
	Contact    *contactView
}

type renderData struct {
	Title    string
	CSS      template.CSS
	Sections []sectionView
	Pages    []Page
	PageW    float64
	PageH    float64
	Margin   float64
}

// Render 产出完整的 HTML 文档：每个计划页一个固定 A4 容器，
// 页内是同一份内容、按页偏移负向平移（分页算法见 PlanPages）。
func (r *Renderer) Render(ctx context.Context, c cv.CV) (string, error) {
	css, ok := templateStyles[c.Template]
	if !ok {
		return "", fmt.Errorf("%w: %q", cv.ErrInvalidTemplate, c.Template)
	}

	sections := make([]sectionView, 0, len(c.Content.Sections))
	for _, section := range c.Content.Sections {
		view, err := r.sectionView(ctx, section)
		if err != nil {
			return "", err
		}
		sections = append(sections, view)
	}

	usable := PageHeightPx - 2*PageMarginPx
	data := renderData{
		Title:    c.Title,
		CSS:      css,
		Sections: sections,
		Pages:    PlanPages(estimateHeight(c.Content), usable),
		PageW:    PageWidthPx,
		PageH:    PageHeightPx,
		Margin:   PageMarginPx,
	}

	var out strings.Builder
	if err := pageTemplate.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render cv %q: %w", c.ID, err)
	}
	return out.String(), nil
}

func (r *Renderer) sectionView(ctx context.Context, section cv.Section) (sectionView, error) {
	view := sectionView{Kind: string(section.Type), Title: section.Title}

	switch content := section.Content.(type) {
	case cv.SummaryContent:
		view.Summary = content.Text
	case cv.ExperienceContent:
		view.Experience = content
	case cv.EducationContent:
		view.Education = content
	case cv.SkillsContent:
		view.Skills = content
	case cv.ProjectsContent:
		view.Projects = content
	case cv.ContactContent:
		contact := &contactView{
			Email:    content.Email,
			Phone:    content.Phone,
			Location: content.Location,
			Website:  content.Website,
		}
		if content.PhotoKey != "" && r.photos != nil {
			src, err := r.photos(ctx, content.PhotoKey)
			if err != nil {
				return sectionView{}, fmt.Errorf("resolve contact photo %q: %w", content.PhotoKey, err)
			}
			contact.PhotoSrc = template.URL(src)
		}
		view.Contact = contact
	default:
		return sectionView{}, fmt.Errorf("%w: section %q", cv.ErrShapeMismatch, section.ID)
	}

	return view, nil
}

// 高度估算用于分页计划。按前端预览的排版常数取近似值即可：
// 估高偏大只会多出一页空白，偏小会截断内容，所以各项都取上沿。
const (
	headingHeightPx      = 96.0
	sectionTitleHeightPx = 52.0
	textLineHeightPx     = 24.0
	entryHeightPx        = 88.0
	skillRowHeightPx     = 36.0
	contactHeightPx      = 140.0
)

func estimateHeight(doc cv.Document) float64 {
	height := headingHeightPx
	for _, section := range doc.Sections {
		height += sectionTitleHeightPx
		switch content := section.Content.(type) {
		case cv.SummaryContent:
			lines := float64(len(content.Text)/90 + 1)
			height += lines * textLineHeightPx
		case cv.ExperienceContent:
			height += float64(len(content)) * entryHeightPx
		case cv.EducationContent:
			height += float64(len(content)) * (entryHeightPx - 24)
		case cv.SkillsContent:
			rows := float64(len(content)/6 + 1)
			height += rows * skillRowHeightPx
		case cv.ProjectsContent:
			height += float64(len(content)) * entryHeightPx
		case cv.ContactContent:
			height += contactHeightPx
		}
	}
	return height
}
