package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		count      int
		page       int
		size       int
		wantNumber int
		wantTotal  int
		wantStart  int
		wantEnd    int
	}{
		{
			name:  "first page of 23 rows",
			count: 23, page: 1, size: 10,
			wantNumber: 1, wantTotal: 3, wantStart: 0, wantEnd: 10,
		},
		{
			name:  "last page is partial",
			count: 23, page: 3, size: 10,
			wantNumber: 3, wantTotal: 3, wantStart: 20, wantEnd: 23,
		},
		{
			name:  "page zero clamps to first",
			count: 23, page: 0, size: 10,
			wantNumber: 1, wantTotal: 3, wantStart: 0, wantEnd: 10,
		},
		{
			name:  "page beyond range clamps to last",
			count: 23, page: 99, size: 10,
			wantNumber: 3, wantTotal: 3, wantStart: 20, wantEnd: 23,
		},
		{
			name:  "negative page clamps to first",
			count: 23, page: -5, size: 10,
			wantNumber: 1, wantTotal: 3, wantStart: 0, wantEnd: 10,
		},
		{
			name:  "zero rows serve one empty page",
			count: 0, page: 7, size: 10,
			wantNumber: 1, wantTotal: 1, wantStart: 0, wantEnd: 0,
		},
		{
			name:  "exact multiple has no trailing page",
			count: 20, page: 2, size: 10,
			wantNumber: 2, wantTotal: 2, wantStart: 10, wantEnd: 20,
		},
		{
			name:  "non-positive size falls back to default",
			count: 15, page: 2, size: 0,
			wantNumber: 2, wantTotal: 2, wantStart: 10, wantEnd: 15,
		},
		{
			name:  "single row",
			count: 1, page: 1, size: 10,
			wantNumber: 1, wantTotal: 1, wantStart: 0, wantEnd: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := ResolvePage(tt.count, tt.page, tt.size)
			assert.Equal(t, tt.wantNumber, p.Number)
			assert.Equal(t, tt.wantTotal, p.TotalPages)
			assert.Equal(t, tt.wantStart, p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
		})
	}
}
