package export

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"cvstudio/internal/cv"
)

func sampleCV() cv.CV {
	created := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	return cv.CV{
		ID:    "11111111-2222-3333-4444-555555555555",
		Title: "Untitled CV",
		Content: cv.Document{Sections: []cv.Section{
			{ID: "s1", Type: cv.SectionSummary, Title: "Professional Summary", Content: cv.SummaryContent{Text: "hello"}},
			{ID: "s2", Type: cv.SectionExperience, Title: "Work Experience", Content: cv.ExperienceContent{
				{Title: "Engineer", Company: "ACME", Period: "2020-2024", Description: "built things"},
			}},
			{ID: "s3", Type: cv.SectionSkills, Title: "Skills", Content: cv.SkillsContent{"Go", "PostgreSQL"}},
		}},
		Template:  cv.TemplateModern,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	source := sampleCV()

	data, err := JSON(source)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	parsed, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !reflect.DeepEqual(source, parsed) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", parsed, source)
	}
}

func TestJSON_CanonicalFieldOrder(t *testing.T) {
	data, err := JSON(sampleCV())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	order := []string{`"id"`, `"title"`, `"content"`, `"template"`, `"created_at"`, `"updated_at"`}
	pos := -1
	for _, field := range order {
		idx := bytes.Index(data, []byte(field))
		if idx < 0 {
			t.Fatalf("field %s missing from export", field)
		}
		if idx < pos {
			t.Fatalf("field %s out of canonical order", field)
		}
		pos = idx
	}

	if !bytes.Contains(data, []byte("\n  ")) {
		t.Fatal("export must be pretty-printed")
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"Untitled CV":       "cv-Untitled-CV.json",
		"My  spaced\ttitle": "cv-My-spaced-title.json",
		"plain":             "cv-plain.json",
	}
	for title, want := range cases {
		if got := Filename(title); got != want {
			t.Fatalf("Filename(%q) = %q, want %q", title, got, want)
		}
	}

	if got := PDFFilename("Untitled CV"); got != "cv-Untitled-CV.pdf" {
		t.Fatalf("PDFFilename = %q", got)
	}
}

func TestRenderer_SinglePageDocument(t *testing.T) {
	html, err := NewRenderer(nil).Render(context.Background(), sampleCV())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if got := strings.Count(html, `class="page"`); got != 1 {
		t.Fatalf("starter cv must fit one page, got %d", got)
	}
	for _, fragment := range []string{"Untitled CV", "Engineer", "ACME", "PostgreSQL"} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("rendered html missing %q", fragment)
		}
	}
}

func TestRenderer_PaginatesTallDocuments(t *testing.T) {
	tall := sampleCV()
	experience := make(cv.ExperienceContent, 0, 40)
	for i := 0; i < 40; i++ {
		experience = append(experience, cv.ExperienceItem{Title: "Role", Company: "Corp", Period: "2020"})
	}
	tall.Content.Sections[1].Content = experience

	html, err := NewRenderer(nil).Render(context.Background(), tall)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if got := strings.Count(html, `class="page"`); got < 2 {
		t.Fatalf("40 experience entries must spill onto multiple pages, got %d", got)
	}
}

func TestRenderer_ResolvesContactPhoto(t *testing.T) {
	source := sampleCV()
	source.Content.Sections = append(source.Content.Sections, cv.Section{
		ID:    "s4",
		Type:  cv.SectionContact,
		Title: "Contact",
		Content: cv.ContactContent{
			Email:    "me@example.com",
			PhotoKey: "user-assets/1/photo.png",
		},
	})

	var resolved string
	renderer := NewRenderer(func(_ context.Context, key string) (string, error) {
		resolved = key
		return "data:image/png;base64,AAAA", nil
	})

	html, err := renderer.Render(context.Background(), source)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if resolved != "user-assets/1/photo.png" {
		t.Fatalf("photo resolver not invoked, got %q", resolved)
	}
	if !strings.Contains(html, "data:image/png;base64,AAAA") {
		t.Fatal("resolved photo src missing from html")
	}
}

func TestRenderer_RejectsUnknownTemplate(t *testing.T) {
	source := sampleCV()
	source.Template = cv.TemplateID("vaporwave")

	if _, err := NewRenderer(nil).Render(context.Background(), source); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
