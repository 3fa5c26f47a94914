package table

import "testing"

func TestFormatAlignsColumns(t *testing.T) {
	rows := [][]string{
		{"ID", "TITLE", "URL"},
		{"7", "Go", "https://go.dev"},
		{"12", "日本語", "https://example.jp"},
	}
	got := Format(rows, []Alignment{AlignRight})
	want := []string{
		"ID  TITLE   URL",
		" 7  Go      https://go.dev",
		"12  日本語  https://example.jp",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFormatEmpty(t *testing.T) {
	if got := Format(nil, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
