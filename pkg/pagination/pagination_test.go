package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"absent", "", Params{Page: 1, PerPage: 20, Offset: 0, Requested: false}},
		{"page only", "?page=3", Params{Page: 3, PerPage: 20, Offset: 40, Requested: true}},
		{"both", "?page=2&per_page=5", Params{Page: 2, PerPage: 5, Offset: 5, Requested: true}},
		{"per_page capped", "?per_page=1000", Params{Page: 1, PerPage: 100, Offset: 0, Requested: true}},
		{"garbage", "?page=abc&per_page=-1", Params{Page: 1, PerPage: 20, Offset: 0, Requested: true}},
		{"other params", "?category=books", Params{Page: 1, PerPage: 20, Offset: 0, Requested: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/products/"+tt.query, nil)
			assert.Equal(t, tt.want, FromRequest(r))
		})
	}
}

func TestParams_Limit(t *testing.T) {
	assert.Equal(t, 0, DefaultParams().Limit())
	assert.Equal(t, 5, Params{Page: 1, PerPage: 5, Requested: true}.Limit())
}

func TestNewResult(t *testing.T) {
	res := NewResult([]string{"a", "b"}, 7, Params{Page: 2, PerPage: 2, Requested: true})

	assert.Equal(t, 4, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.Equal(t, 7, res.TotalCount)

	last := NewResult[string](nil, 7, Params{Page: 4, PerPage: 2, Requested: true})
	assert.False(t, last.HasNext)
	assert.NotNil(t, last.Data)
}
