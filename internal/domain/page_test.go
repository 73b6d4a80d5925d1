package domain_test

import (
	"testing"

	"github.com/msomdec/blog-desk/internal/domain"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{9, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{23, 10, 3},
		{100, 10, 10},
		{101, 10, 11},
		{5, 0, 0},
		{-3, 10, 0},
	}
	for _, tc := range tests {
		if got := domain.TotalPages(tc.total, tc.size); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

func TestTotalPagesMatchesCeiling(t *testing.T) {
	for total := 0; total <= 250; total++ {
		got := domain.TotalPages(total, domain.DefaultPageSize)
		want := total / domain.DefaultPageSize
		if total%domain.DefaultPageSize != 0 {
			want++
		}
		if got != want {
			t.Fatalf("TotalPages(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestSortKeyValid(t *testing.T) {
	for _, k := range []domain.SortKey{domain.SortCreatedAsc, domain.SortCreatedDesc, domain.SortTitleAsc, domain.SortTitleDesc} {
		if !k.Valid() {
			t.Errorf("expected %q to be valid", k)
		}
	}
	if domain.SortKey("author").Valid() {
		t.Error("expected unknown sort key to be invalid")
	}
	if domain.SortKey("").Valid() {
		t.Error("expected empty sort key to be invalid")
	}
}
