package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                 string
		page, size, total    int
		wantPages            int
		wantNext, wantPrev   bool
		wantNextP, wantPrevP *int
	}{
		{"last of three", 3, 10, 25, 3, false, true, nil, intPtr(2)},
		{"first of three", 1, 10, 25, 3, true, false, intPtr(2), nil},
		{"middle", 2, 10, 25, 3, true, true, intPtr(3), intPtr(1)},
		{"exact multiple", 2, 10, 20, 2, false, true, nil, intPtr(1)},
		{"empty first page", 1, 10, 0, 0, false, false, nil, nil},
		{"empty later page", 2, 10, 0, 0, false, true, nil, intPtr(1)},
		{"past the end", 5, 10, 11, 2, false, true, nil, intPtr(4)},
		{"zero size treated as one", 1, 0, 3, 3, true, false, intPtr(2), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Paginate(tt.page, tt.size, tt.total)
			assert.Equal(t, tt.wantPages, m.TotalPages)
			assert.Equal(t, tt.wantNext, m.HasNextPage)
			assert.Equal(t, tt.wantPrev, m.HasPreviousPage)
			assert.Equal(t, tt.wantNextP, m.NextPage)
			assert.Equal(t, tt.wantPrevP, m.PreviousPage)
		})
	}
}

func TestPaginate_Properties(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for size := 1; size <= 12; size++ {
			pages := Paginate(1, size, total).TotalPages
			for page := 1; page <= pages+1; page++ {
				m := Paginate(page, size, total)
				if m.TotalPages != pages {
					t.Fatalf("total pages changed with page number: %d vs %d", m.TotalPages, pages)
				}
				if m.TotalPages*size < total || (m.TotalPages > 0 && (m.TotalPages-1)*size >= total) {
					t.Fatalf("ceil violated: total=%d size=%d pages=%d", total, size, m.TotalPages)
				}
				if m.HasNextPage != (page < m.TotalPages) {
					t.Fatalf("hasNext wrong: page=%d pages=%d", page, m.TotalPages)
				}
				if m.HasPreviousPage != (page > 1) {
					t.Fatalf("hasPrev wrong: page=%d", page)
				}
				if (m.NextPage != nil) != m.HasNextPage || (m.PreviousPage != nil) != m.HasPreviousPage {
					t.Fatalf("optional page numbers disagree with flags at page=%d", page)
				}
			}
		}
	}
}

func TestSlicePage(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6, 7}

	p := SlicePage(all, 2, 3)
	assert.Equal(t, []int{4, 5, 6}, p.Items)
	assert.Equal(t, 7, p.TotalItems)

	p = SlicePage(all, 3, 3)
	assert.Equal(t, []int{7}, p.Items)

	p = SlicePage(all, 4, 3)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)
	assert.Equal(t, 3, p.Metadata().TotalPages)
}

func TestPageClamp(t *testing.T) {
	p := Page[int]{Items: []int{1, 2, 3, 4}, PageNumber: 0, PageSize: 2, TotalItems: 4}.Clamp()
	assert.Equal(t, []int{1, 2}, p.Items)
	assert.Equal(t, 1, p.PageNumber)
}
