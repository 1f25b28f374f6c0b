package cv

import (
	"fmt"

	"github.com/google/uuid"
)

// ChangeOp 标识 Store 上发生的一次变更种类。
type ChangeOp string

const (
	ChangeTitle          ChangeOp = "title"
	ChangeTemplate       ChangeOp = "template"
	ChangeSectionAdded   ChangeOp = "section_added"
	ChangeSectionUpdated ChangeOp = "section_updated"
	ChangeSectionRemoved ChangeOp = "section_removed"
	ChangeReordered      ChangeOp = "reordered"
	ChangeLoaded         ChangeOp = "loaded"
)

// Change 在每次成功的变更后分发给订阅者。
type Change struct {
	Op        ChangeOp
	SectionID string
}

// SectionPatch 描述对单个 Section 的部分更新；ID 与 Type 不可修改。
type SectionPatch struct {
	Title   *string
	Content SectionContent
}

// Store 是当前编辑中文档的唯一内存持有者。
//
// 约定：一个 Store 实例对应恰好一个编辑会话，单写者、无并发修改契约；
// 与 Persistence Gateway 只在显式的 Load/Snapshot 边界同步。
type Store struct {
	title    string
	template TemplateID
	doc      Document

	nextSubID int
	subs      map[int]func(Change)
}

// NewStore 返回持有初始文档的 Store。
func NewStore() *Store {
	return &Store{
		title:    "My CV",
		template: DefaultTemplate,
		doc:      NewDocument(),
		subs:     map[int]func(Change){},
	}
}

// Title returns the current document title.
func (s *Store) Title() string { return s.title }

// Template returns the current template id.
func (s *Store) Template() TemplateID { return s.template }

// Document returns a deep copy of the current document.
func (s *Store) Document() Document { return s.doc.Clone() }

// Subscribe 注册变更回调，返回取消函数。回调在变更成功后同步触发。
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *Store) notify(change Change) {
	for _, fn := range s.subs {
		fn(change)
	}
}

// SetTitle 更新文档标题。
func (s *Store) SetTitle(title string) {
	s.title = title
	s.notify(Change{Op: ChangeTitle})
}

// SetTemplate 切换模板。未知模板一律拒绝。
func (s *Store) SetTemplate(template TemplateID) error {
	parsed, err := ParseTemplate(string(template))
	if err != nil {
		return err
	}
	s.template = parsed
	s.notify(Change{Op: ChangeTemplate})
	return nil
}

// AddSection 在序列末尾追加一个新 Section，内容为该类型的零值。
func (s *Store) AddSection(sectionType SectionType, title string) (Section, error) {
	parsed, err := ParseSectionType(string(sectionType))
	if err != nil {
		return Section{}, err
	}

	section := Section{
		ID:      uuid.NewString(),
		Type:    parsed,
		Title:   title,
		Content: zeroContent(parsed),
	}
	s.doc.Sections = append(s.doc.Sections, section)
	s.notify(Change{Op: ChangeSectionAdded, SectionID: section.ID})
	return section.clone(), nil
}

// UpdateSection 合并部分字段到指定 Section。
// ID 不存在返回 ErrNotFound；content 补丁必须与 Section 类型匹配。
func (s *Store) UpdateSection(id string, patch SectionPatch) error {
	idx := s.doc.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: section %q", ErrNotFound, id)
	}

	section := s.doc.Sections[idx]
	if patch.Title != nil {
		section.Title = *patch.Title
	}
	if patch.Content != nil {
		section.Content = patch.Content.clone()
	}
	if err := section.Validate(); err != nil {
		return err
	}

	s.doc.Sections[idx] = section
	s.notify(Change{Op: ChangeSectionUpdated, SectionID: id})
	return nil
}

// RemoveSection 删除指定 Section 并保持序列稠密。
// ID 不存在时静默跳过；与 UpdateSection 的硬失败不对称，这是沿用的设计：
// 删除一个已经不存在的东西是幂等的，更新丢失目标则是调用方的错误。
func (s *Store) RemoveSection(id string) {
	idx := s.doc.indexOf(id)
	if idx < 0 {
		return
	}
	s.doc.Sections = append(s.doc.Sections[:idx], s.doc.Sections[idx+1:]...)
	s.notify(Change{Op: ChangeSectionRemoved, SectionID: id})
}

// Reorder 以给定的 ID 顺序整体替换序列。
// ids 必须恰好是现有 Section ID 的一个排列，否则返回 ErrInvariantViolation。
func (s *Store) Reorder(ids []string) error {
	if len(ids) != len(s.doc.Sections) {
		return fmt.Errorf("%w: got %d ids, document has %d sections",
			ErrInvariantViolation, len(ids), len(s.doc.Sections))
	}

	reordered := make([]Section, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %q in reorder", ErrInvariantViolation, id)
		}
		seen[id] = struct{}{}

		idx := s.doc.indexOf(id)
		if idx < 0 {
			return fmt.Errorf("%w: id %q not in document", ErrInvariantViolation, id)
		}
		reordered = append(reordered, s.doc.Sections[idx])
	}

	s.doc.Sections = reordered
	s.notify(Change{Op: ChangeReordered})
	return nil
}

// Load 用持久化副本替换编辑状态（fetch 边界）。
func (s *Store) Load(c CV) error {
	if _, err := ParseTemplate(string(c.Template)); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}

	s.title = c.Title
	s.template = c.Template
	s.doc = c.Content.Clone()
	s.notify(Change{Op: ChangeLoaded})
	return nil
}

// Snapshot 导出当前编辑状态，用于写回 Persistence Gateway（save 边界）。
func (s *Store) Snapshot() (title string, template TemplateID, doc Document) {
	return s.title, s.template, s.doc.Clone()
}
