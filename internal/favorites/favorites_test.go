package favorites

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	e := Entry{Name: "  Go  ", URL: "\thttps://go.dev \n", Description: "  "}.Normalize()
	if e.Name != "Go" || e.URL != "https://go.dev" || e.Description != "" {
		t.Errorf("Normalize() = %+v", e)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{"ok", Entry{Name: "Go", URL: "https://go.dev"}, false},
		{"ok with description", Entry{Name: "Go", URL: "http://go.dev/doc", Description: "docs"}, false},
		{"missing name", Entry{URL: "https://go.dev"}, true},
		{"missing url", Entry{Name: "Go"}, true},
		{"bad scheme", Entry{Name: "Go", URL: "ftp://go.dev"}, true},
		{"no scheme", Entry{Name: "Go", URL: "go.dev"}, true},
		{"no host", Entry{Name: "Go", URL: "https://"}, true},
	}

	for _, tt := range tests {
		err := tt.entry.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrValidation) {
			t.Errorf("%s: error %v should wrap ErrValidation", tt.name, err)
		}
	}
}

func TestClone(t *testing.T) {
	if Clone(nil) != nil {
		t.Error("Clone(nil) should stay nil")
	}
	src := []Entry{{Name: "a"}}
	dst := Clone(src)
	dst[0].Name = "b"
	if src[0].Name != "a" {
		t.Error("Clone() should not share backing array")
	}
}
