package response

import "testing"

func TestClampPageLimit(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults pass through", 1, 20, 1, 20},
		{"zero page becomes first", 0, 20, 1, 20},
		{"negative page becomes first", -3, 20, 1, 20},
		{"zero limit gets default", 2, 0, 2, 20},
		{"oversized limit is capped", 1, 500, 1, 100},
		{"cap boundary kept", 1, 100, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := ClampPageLimit(tt.page, tt.limit)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("ClampPageLimit(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.limit, page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestCalculatePaginationMatchesClampedLimit(t *testing.T) {
	meta := CalculatePagination(1, 500, 250)
	if meta.PerPage != 100 {
		t.Errorf("expected per_page 100, got %d", meta.PerPage)
	}
	if meta.TotalPages != 3 {
		t.Errorf("expected 3 total pages for 250 rows at 100 per page, got %d", meta.TotalPages)
	}
}
