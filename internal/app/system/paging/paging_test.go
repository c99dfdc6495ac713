package paging

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		limit int
		want  int
	}{
		{"no results", 0, 10, 1},
		{"fewer than a page", 3, 10, 1},
		{"exactly one page", 10, 10, 1},
		{"one over", 11, 10, 2},
		{"three pages", 25, 10, 3},
		{"limit one", 7, 1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageCount(tt.total, tt.limit); got != tt.want {
				t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
			}
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/jobs", nil)
	p, err := Parse(req, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Page != 1 || p.Limit != DefaultLimit {
		t.Errorf("got %+v, want page 1 limit %d", p, DefaultLimit)
	}
}

func TestParse_Values(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/jobs?page=3&limit=25", nil)
	p, err := Parse(req, DefaultLimit)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Page != 3 || p.Limit != 25 {
		t.Errorf("got %+v, want page 3 limit 25", p)
	}
	if p.Skip() != 50 {
		t.Errorf("Skip() = %d, want 50", p.Skip())
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		field string
	}{
		{"zero page", "/?page=0", "page"},
		{"negative page", "/?page=-1", "page"},
		{"non numeric page", "/?page=abc", "page"},
		{"zero limit", "/?limit=0", "limit"},
		{"non numeric limit", "/?limit=ten", "limit"},
		{"limit too large", "/?limit=1000", "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(httptest.NewRequest("GET", tt.url, nil), DefaultLimit)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if f := apperr.Field(err); f != tt.field {
				t.Errorf("field: got %q, want %q", f, tt.field)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		p         Params
		n         int
		wantStart int
		wantEnd   int
	}{
		{"first page", Params{Page: 1, Limit: 10}, 25, 0, 10},
		{"last partial page", Params{Page: 3, Limit: 10}, 25, 20, 25},
		{"past the end", Params{Page: 4, Limit: 10}, 25, 25, 25},
		{"empty", Params{Page: 1, Limit: 10}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := tt.p.Window(tt.n)
			if s != tt.wantStart || e != tt.wantEnd {
				t.Errorf("Window(%d) = [%d,%d), want [%d,%d)", tt.n, s, e, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
