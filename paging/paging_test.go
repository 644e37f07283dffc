package paging

import "testing"

func TestTotalPages(t *testing.T) {
	tests := []struct {
		items, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{100, 10, 10},
		{7, 1, 7},
		{5, 0, 5},
		{3, -4, 3},
	}

	for i, tt := range tests {
		if got := TotalPages(tt.items, tt.size); got != tt.want {
			t.Fatalf("case %d: expected %d pages, but got %d", i, tt.want, got)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		number, total, want int
	}{
		{1, 1, 1},
		{0, 1, 1},
		{-3, 7, 1},
		{5, 10, 5},
		{5, 1, 1},
		{11, 10, 10},
	}

	for i, tt := range tests {
		got := Clamp(tt.number, tt.total)
		if got != tt.want {
			t.Fatalf("case %d: expected page %d, but got %d", i, tt.want, got)
		}
		if got < 1 || got > tt.total {
			t.Fatalf("case %d: page %d escaped [1, %d]", i, got, tt.total)
		}
	}
}

func TestEmptyResultSet(t *testing.T) {
	p := New(5, 10, 0)
	if p.TotalPages != 1 {
		t.Fatalf("expected a single page, but got %d", p.TotalPages)
	}
	if p.Number != 1 {
		t.Fatalf("expected requested page 5 clamped to 1, but got %d", p.Number)
	}
}

func TestPreviousNextEdges(t *testing.T) {
	for _, total := range []int{1, 2, 9} {
		first := New(1, 1, total)
		if first.Previous() != 1 {
			t.Fatalf("total %d: previous of first page should stay 1", total)
		}
		last := New(total, 1, total)
		if last.Next() != total {
			t.Fatalf("total %d: next of last page should stay %d", total, total)
		}
	}

	p := New(3, 1, 9)
	if p.Previous() != 2 || p.Next() != 4 {
		t.Fatalf("expected neighbors 2 and 4, but got %d and %d", p.Previous(), p.Next())
	}
	if !p.HasPrevious() || !p.HasNext() {
		t.Fatal("interior page should have both neighbors")
	}
}

func TestOffset(t *testing.T) {
	if got := New(1, 10, 100).Offset(); got != 0 {
		t.Fatalf("expected offset 0, but got %d", got)
	}
	if got := New(4, 10, 100).Offset(); got != 30 {
		t.Fatalf("expected offset 30, but got %d", got)
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	got := Slice(items, 2, 3)
	want := []int{4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("expected %v, but got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, but got %v", want, got)
		}
	}

	// Out-of-range page clamps to the last one.
	got = Slice(items, 99, 3)
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("expected [7], but got %v", got)
	}

	// Below-range page clamps to the first one.
	got = Slice(items, -1, 3)
	if len(got) != 3 || got[0] != 1 {
		t.Fatalf("expected [1 2 3], but got %v", got)
	}

	if got := Slice([]int{}, 1, 3); got != nil {
		t.Fatalf("expected nil slice for empty input, but got %v", got)
	}
}
