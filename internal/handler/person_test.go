package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestValidatePersonDocs(t *testing.T) {
	cases := []struct {
		name    string
		kind    string
		cpf     string
		cnpj    string
		wantErr bool
	}{
		{"individual with valid cpf", "1", "529.982.247-25", "", false},
		{"individual with bad cpf", "1", "111.111.111-11", "", true},
		{"individual carrying cnpj", "1", "529.982.247-25", "11.444.777/0001-61", true},
		{"legal entity with valid cnpj", "2", "", "11.444.777/0001-61", false},
		{"legal entity with bad cnpj", "2", "", "11.111.111/1111-11", true},
		{"legal entity carrying cpf", "2", "529.982.247-25", "11.444.777/0001-61", true},
		{"unknown kind", "3", "", "", true},
		{"empty kind", "", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := validatePersonDocs(tc.kind, tc.cpf, tc.cnpj)
			if (len(errs) > 0) != tc.wantErr {
				t.Errorf("validatePersonDocs(%q, %q, %q) = %v, wantErr=%v",
					tc.kind, tc.cpf, tc.cnpj, errs, tc.wantErr)
			}
		})
	}
}

func TestPageParams(t *testing.T) {
	e := echo.New()
	cases := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, defaultPageSize},
		{"page=3&limit=25", 3, 25},
		{"page=-1&limit=0", 1, defaultPageSize},
		{"page=2&limit=9999", 2, maxPageSize},
		{"page=abc&limit=xyz", 1, defaultPageSize},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/?"+tc.query, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		page, limit := pageParams(c)
		if page != tc.wantPage || limit != tc.wantLimit {
			t.Errorf("pageParams(%q) = (%d, %d), want (%d, %d)",
				tc.query, page, limit, tc.wantPage, tc.wantLimit)
		}
	}
}
