package pagination

import "testing"

func TestNormalizeClampsWindow(t *testing.T) {
	cases := []struct {
		name      string
		in        Params
		wantPage  int
		wantLimit int
	}{
		{"defaults", Params{}, 1, DefaultLimit},
		{"below minimum limit", Params{Page: 2, Limit: 3}, 2, MinLimit},
		{"above maximum limit", Params{Page: 1, Limit: 500}, 1, MaxLimit},
		{"negative page", Params{Page: -4, Limit: 25}, 1, 25},
		{"in range untouched", Params{Page: 3, Limit: 20}, 3, 20},
	}

	for _, tc := range cases {
		got := Normalize(tc.in)
		if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
			t.Fatalf("%s: got page=%d limit=%d, want page=%d limit=%d",
				tc.name, got.Page, got.Limit, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestOffset(t *testing.T) {
	p := Normalize(Params{Page: 3, Limit: 20})
	if got := p.Offset(); got != 40 {
		t.Fatalf("expected offset 40, got %d", got)
	}
}

func TestTotalPages(t *testing.T) {
	if got := TotalPages(101, 50); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := TotalPages(100, 50); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}
	if got := TotalPages(0, 50); got != 0 {
		t.Fatalf("expected 0 pages, got %d", got)
	}
}
