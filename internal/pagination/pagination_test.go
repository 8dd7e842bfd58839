package pagination

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew_Defaults(t *testing.T) {
	p := New(0, 0, 45)
	want := Page{Number: 1, PerPage: 20, Total: 45, TotalPages: 3, HasPrev: false, HasNext: true}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("New mismatch (-want +got):\n%s", diff)
	}
	if p.Offset() != 0 || p.Limit() != 20 {
		t.Errorf("Offset/Limit = %d/%d, want 0/20", p.Offset(), p.Limit())
	}
}

func TestNew_ClampsPerPage(t *testing.T) {
	if p := New(1, 500, 10); p.PerPage != MaxPerPage {
		t.Errorf("PerPage = %d, want %d", p.PerPage, MaxPerPage)
	}
}

func TestNew_LastPage(t *testing.T) {
	p := New(3, 20, 45)
	if !p.HasPrev || p.HasNext {
		t.Errorf("HasPrev/HasNext = %v/%v, want true/false", p.HasPrev, p.HasNext)
	}
	if p.Offset() != 40 {
		t.Errorf("Offset = %d, want 40", p.Offset())
	}
}

func TestNew_Empty(t *testing.T) {
	p := New(1, 20, 0)
	if p.TotalPages != 0 || p.HasNext || p.HasPrev {
		t.Errorf("unexpected page for empty result: %+v", p)
	}
	if got := p.Window(5); len(got) != 0 {
		t.Errorf("Window = %v, want empty", got)
	}
}

func TestWithTotal(t *testing.T) {
	p := New(2, 10, 0).WithTotal(35)
	if p.TotalPages != 4 || !p.HasNext || !p.HasPrev {
		t.Errorf("unexpected page: %+v", p)
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		name  string
		page  int
		total int
		size  int
		want  []int
	}{
		{"先頭", 1, 200, 5, []int{1, 2, 3, 4, 5}},
		{"中央", 5, 200, 5, []int{3, 4, 5, 6, 7}},
		{"末尾", 10, 200, 5, []int{6, 7, 8, 9, 10}},
		{"ページ数が窓より少ない", 2, 60, 5, []int{1, 2, 3}},
		{"範囲外のページ", 99, 200, 3, []int{8, 9, 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := New(tc.page, 20, tc.total).Window(tc.size)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Window mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNew_HugePage_KeepsOffsetNonNegative(t *testing.T) {
	for _, perPage := range []int{1, 20, MaxPerPage} {
		p := New(math.MaxInt, perPage, 0)
		if p.Offset() < 0 {
			t.Errorf("New(MaxInt, %d, 0).Offset() = %d, want >= 0", perPage, p.Offset())
		}
		if p.Number != math.MaxInt/perPage {
			t.Errorf("Number = %d, want %d", p.Number, math.MaxInt/perPage)
		}
		if p.HasNext {
			t.Error("HasNext should be false beyond the last page")
		}
	}
}

func TestWithTotal_HugePage(t *testing.T) {
	p := New(math.MaxInt, 20, 0).WithTotal(45)
	if p.Offset() < 0 || p.HasNext || !p.HasPrev {
		t.Errorf("unexpected page: %+v", p)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, p.Window(5)); diff != "" {
		t.Errorf("Window mismatch (-want +got):\n%s", diff)
	}
}
