package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckInputMessages(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{CategoryInput{}, "nombre must not be blank"},
		{CategoryInput{Name: strings.Repeat("ñ", 51)}, "nombre size must be at most 50"},
		{CategoryInput{Name: "Hogar", Description: strings.Repeat("x", 151)}, "descripcion size must be at most 150"},
		{ProductInput{Name: "Lámpara", Price: 100, CategoryID: 1}, "descripcion must not be blank"},
		{ProductInput{Name: "Lámpara", Description: "led", CategoryID: 1}, "precio must be greater than 0"},
		{ProductInput{Name: "Lámpara", Description: "led", Price: 100}, "categoriaId must not be null"},
		{ProductInput{Name: "Lámpara", Description: "led", Price: 100, CategoryID: -2}, "categoriaId must be greater than 0"},
	}
	for _, tc := range cases {
		err := checkInput(tc.in)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput, got %v", tc.in, err)
		}
		if !strings.HasSuffix(err.Error(), tc.want) {
			t.Fatalf("%+v: got %q, want suffix %q", tc.in, err.Error(), tc.want)
		}
	}

	if err := checkInput(CategoryInput{Name: strings.Repeat("ñ", 50)}); err != nil {
		t.Fatalf("50 runes should pass: %v", err)
	}
}
