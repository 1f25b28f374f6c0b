package cv

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestNewDocument_StarterSections(t *testing.T) {
	doc := NewDocument()

	if len(doc.Sections) != 4 {
		t.Fatalf("expected 4 starter sections, got %d", len(doc.Sections))
	}

	wantTypes := []SectionType{SectionSummary, SectionExperience, SectionEducation, SectionSkills}
	seen := map[string]struct{}{}
	for i, section := range doc.Sections {
		if section.Type != wantTypes[i] {
			t.Fatalf("section %d: expected type %s, got %s", i, wantTypes[i], section.Type)
		}
		if section.ID == "" {
			t.Fatalf("section %d: empty id", i)
		}
		if _, dup := seen[section.ID]; dup {
			t.Fatalf("duplicate starter section id %q", section.ID)
		}
		seen[section.ID] = struct{}{}
	}

	if err := doc.Validate(); err != nil {
		t.Fatalf("starter document must validate: %v", err)
	}
}

func TestSectionValidate_ShapeMismatch(t *testing.T) {
	section := Section{
		ID:      "s1",
		Type:    SectionSummary,
		Title:   "Summary",
		Content: SkillsContent{"Go"},
	}

	err := section.Validate()
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestSectionUnmarshal_RejectsWrongPayload(t *testing.T) {
	// skills content must be an ordered sequence of strings
	raw := []byte(`{"id":"s1","type":"skills","title":"Skills","content":[{"title":"oops"}]}`)

	var section Section
	err := json.Unmarshal(raw, &section)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestSectionUnmarshal_UnknownType(t *testing.T) {
	raw := []byte(`{"id":"s1","type":"hobbies","title":"Hobbies","content":""}`)

	var section Section
	if err := json.Unmarshal(raw, &section); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for unknown type, got %v", err)
	}
}

func TestDocumentJSON_RoundTrip(t *testing.T) {
	doc := Document{
		Sections: []Section{
			{ID: "a", Type: SectionSummary, Title: "Summary", Content: SummaryContent{Text: "hello"}},
			{ID: "b", Type: SectionExperience, Title: "Experience", Content: ExperienceContent{
				{Title: "Engineer", Company: "ACME", Period: "2020-2024", Description: "built things"},
			}},
			{ID: "c", Type: SectionSkills, Title: "Skills", Content: SkillsContent{"Go", "SQL"}},
			{ID: "d", Type: SectionContact, Title: "Contact", Content: ContactContent{Email: "a@example.com"}},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	parsed, err := ParseDocument(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !reflect.DeepEqual(doc, parsed) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", parsed, doc)
	}
}

func TestDocumentValidate_DuplicateIDs(t *testing.T) {
	doc := Document{
		Sections: []Section{
			{ID: "x", Type: SectionSummary, Title: "A", Content: SummaryContent{}},
			{ID: "x", Type: SectionSkills, Title: "B", Content: SkillsContent{}},
		},
	}

	if err := doc.Validate(); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
}

func TestParseTemplate(t *testing.T) {
	for _, id := range []string{"modern", "classic", "creative"} {
		if _, err := ParseTemplate(id); err != nil {
			t.Fatalf("template %q must parse: %v", id, err)
		}
	}

	if _, err := ParseTemplate("neon"); !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
}

func TestContactContent_EmailValidation(t *testing.T) {
	bad := Section{ID: "c", Type: SectionContact, Title: "Contact", Content: ContactContent{Email: "not-an-email"}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error for malformed email")
	}

	ok := Section{ID: "c", Type: SectionContact, Title: "Contact", Content: ContactContent{Email: "me@example.com"}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid contact rejected: %v", err)
	}
}
