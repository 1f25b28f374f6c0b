package export

import "testing"

func TestPlanPages_SinglePageWhenContentFits(t *testing.T) {
	for _, height := range []float64{0, 100, 1026} {
		pages := PlanPages(height, 1026)
		if len(pages) != 1 {
			t.Fatalf("height %.0f: expected 1 page, got %d", height, len(pages))
		}
		if pages[0].Offset != 0 {
			t.Fatalf("first page offset must be zero, got %f", pages[0].Offset)
		}
	}
}

func TestPlanPages_OffsetsAdvanceByOnePageHeight(t *testing.T) {
	// 2.5 页的内容：第一页 + 两次翻页
	pages := PlanPages(2565, 1026)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	want := []float64{0, -1026, -2052}
	for i, page := range pages {
		if page.Offset != want[i] {
			t.Fatalf("page %d: expected offset %f, got %f", i, want[i], page.Offset)
		}
	}
}

func TestPlanPages_ExactMultiple(t *testing.T) {
	// 恰好两页高：余量等于页高时不再翻页
	pages := PlanPages(2052, 1026)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[1].Offset != -1026 {
		t.Fatalf("second page offset: %f", pages[1].Offset)
	}
}

func TestPlanPages_DegeneratePageHeight(t *testing.T) {
	if got := len(PlanPages(500, 0)); got != 1 {
		t.Fatalf("non-positive page height must yield a single page, got %d", got)
	}
}
