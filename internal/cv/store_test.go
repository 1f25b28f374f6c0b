package cv

import (
	"errors"
	"reflect"
	"testing"
)

func sectionIDs(doc Document) []string {
	ids := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		ids[i] = s.ID
	}
	return ids
}

func TestStore_AddThenRemoveIsInverse(t *testing.T) {
	store := NewStore()
	before := store.Document()

	section, err := store.AddSection(SectionProjects, "Projects")
	if err != nil {
		t.Fatalf("add section: %v", err)
	}
	if len(store.Document().Sections) != len(before.Sections)+1 {
		t.Fatalf("section not appended")
	}

	store.RemoveSection(section.ID)

	after := store.Document()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("add+remove must restore the prior sequence exactly:\n got %#v\nwant %#v", after, before)
	}
}

func TestStore_AddSectionZeroContent(t *testing.T) {
	store := NewStore()

	summary, err := store.AddSection(SectionSummary, "Another Summary")
	if err != nil {
		t.Fatalf("add summary: %v", err)
	}
	if got := summary.Content.(SummaryContent).Text; got != "" {
		t.Fatalf("summary zero content must be empty string, got %q", got)
	}

	skills, err := store.AddSection(SectionSkills, "More Skills")
	if err != nil {
		t.Fatalf("add skills: %v", err)
	}
	if got := skills.Content.(SkillsContent); len(got) != 0 {
		t.Fatalf("skills zero content must be empty sequence, got %v", got)
	}

	if _, err := store.AddSection(SectionType("hobbies"), "Hobbies"); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected unknown section type rejection, got %v", err)
	}
}

func TestStore_UpdateSectionMergesOnlyGivenFields(t *testing.T) {
	store := NewStore()
	doc := store.Document()
	target := doc.Sections[0]
	newTitle := "X"

	if err := store.UpdateSection(target.ID, SectionPatch{Title: &newTitle}); err != nil {
		t.Fatalf("update: %v", err)
	}

	after := store.Document()
	if after.Sections[0].Title != "X" {
		t.Fatalf("title not updated: %q", after.Sections[0].Title)
	}
	if after.Sections[0].ID != target.ID || after.Sections[0].Type != target.Type {
		t.Fatalf("id/type must be preserved")
	}
	if !reflect.DeepEqual(after.Sections[0].Content, target.Content) {
		t.Fatalf("content must be untouched")
	}
	// 其余 Section 不受影响（无跨 Section 别名）
	if !reflect.DeepEqual(after.Sections[1:], doc.Sections[1:]) {
		t.Fatalf("other sections must be untouched")
	}
}

func TestStore_UpdateSectionShapeGuard(t *testing.T) {
	store := NewStore()
	summaryID := store.Document().Sections[0].ID

	err := store.UpdateSection(summaryID, SectionPatch{Content: SkillsContent{"Go"}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestStore_UpdateMissingSectionFails(t *testing.T) {
	store := NewStore()
	title := "X"

	err := store.UpdateSection("no-such-id", SectionPatch{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_RemoveMissingSectionIsNoop(t *testing.T) {
	store := NewStore()
	before := store.Document()

	store.RemoveSection("no-such-id")

	if !reflect.DeepEqual(before, store.Document()) {
		t.Fatalf("remove of missing id must not change the document")
	}
}

func TestStore_ReorderPermutation(t *testing.T) {
	store := NewStore()
	ids := sectionIDs(store.Document())

	perm := []string{ids[3], ids[1], ids[0], ids[2]}
	if err := store.Reorder(perm); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	after := store.Document()
	if got := sectionIDs(after); !reflect.DeepEqual(got, perm) {
		t.Fatalf("order not applied: got %v want %v", got, perm)
	}

	// 重排只改变顺序，不改变 Section 多重集
	if len(after.Sections) != 4 {
		t.Fatalf("section count changed: %d", len(after.Sections))
	}
	types := map[SectionType]int{}
	for _, s := range after.Sections {
		types[s.Type]++
	}
	for _, want := range []SectionType{SectionSummary, SectionExperience, SectionEducation, SectionSkills} {
		if types[want] != 1 {
			t.Fatalf("section multiset changed: %v", types)
		}
	}
}

func TestStore_ReorderRejectsNonPermutation(t *testing.T) {
	store := NewStore()
	ids := sectionIDs(store.Document())

	cases := map[string][]string{
		"dropped id":    {ids[0], ids[1], ids[2]},
		"foreign id":    {ids[0], ids[1], ids[2], "intruder"},
		"duplicated id": {ids[0], ids[0], ids[1], ids[2]},
	}

	for name, seq := range cases {
		if err := store.Reorder(seq); !errors.Is(err, ErrInvariantViolation) {
			t.Fatalf("%s: expected ErrInvariantViolation, got %v", name, err)
		}
	}

	// 失败的重排不得留下部分状态
	if got := sectionIDs(store.Document()); !reflect.DeepEqual(got, ids) {
		t.Fatalf("failed reorder mutated the document: %v", got)
	}
}

func TestStore_SetTemplateStrict(t *testing.T) {
	store := NewStore()

	if err := store.SetTemplate(TemplateClassic); err != nil {
		t.Fatalf("set template: %v", err)
	}
	if store.Template() != TemplateClassic {
		t.Fatalf("template not applied")
	}

	if err := store.SetTemplate(TemplateID("brutalist")); !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
	if store.Template() != TemplateClassic {
		t.Fatalf("rejected template must not be applied")
	}
}

func TestStore_SubscribeNotifiesOnMutation(t *testing.T) {
	store := NewStore()

	var changes []Change
	cancel := store.Subscribe(func(c Change) { changes = append(changes, c) })

	store.SetTitle("Untitled CV")
	section, _ := store.AddSection(SectionSkills, "Skills")
	store.RemoveSection(section.ID)

	want := []ChangeOp{ChangeTitle, ChangeSectionAdded, ChangeSectionRemoved}
	if len(changes) != len(want) {
		t.Fatalf("expected %d changes, got %d (%v)", len(want), len(changes), changes)
	}
	for i, op := range want {
		if changes[i].Op != op {
			t.Fatalf("change %d: expected %s got %s", i, op, changes[i].Op)
		}
	}

	cancel()
	store.SetTitle("after cancel")
	if len(changes) != len(want) {
		t.Fatalf("cancelled subscriber still notified")
	}
}

func TestStore_LoadAndSnapshot(t *testing.T) {
	store := NewStore()

	doc := NewDocument()
	source := CV{
		ID:       "cv-1",
		Title:    "Loaded CV",
		Content:  doc,
		Template: TemplateCreative,
	}
	if err := store.Load(source); err != nil {
		t.Fatalf("load: %v", err)
	}

	title, template, snapshot := store.Snapshot()
	if title != "Loaded CV" || template != TemplateCreative {
		t.Fatalf("snapshot state mismatch: %q %q", title, template)
	}
	if !reflect.DeepEqual(snapshot, doc) {
		t.Fatalf("snapshot document mismatch")
	}

	// snapshot 是深拷贝，改动不得影响 Store
	snapshot.Sections[0].Title = "tampered"
	if store.Document().Sections[0].Title == "tampered" {
		t.Fatalf("snapshot aliases store state")
	}

	bad := source
	bad.Template = TemplateID("nope")
	if err := store.Load(bad); !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
}
