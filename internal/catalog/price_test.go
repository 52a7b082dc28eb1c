package catalog

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParsePrice(t *testing.T) {
	cases := map[string]Price{
		"1299.99": 129999,
		"89.9":    8990,
		"5":       500,
		"0.01":    1,
		"-3.50":   -350,
	}
	for in, want := range cases {
		got, err := ParsePrice(in)
		if err != nil {
			t.Fatalf("ParsePrice(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePrice(%q) = %d, want %d", in, got, want)
		}
	}
	for _, in := range []string{"", "1.234", "abc", "1.", ".5", "--1.50", "1e3"} {
		if _, err := ParsePrice(in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ParsePrice(%q) expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestPriceJSON(t *testing.T) {
	var in ProductInput
	if err := json.Unmarshal([]byte(`{"name":"Chaqueta","precio":89.99,"categoriaId":3}`), &in); err != nil {
		t.Fatal(err)
	}
	if in.Price != 8999 || in.CategoryID != 3 {
		t.Fatalf("unexpected input: %+v", in)
	}
	if err := json.Unmarshal([]byte(`{"precio":"12.5"}`), &in); err != nil || in.Price != 1250 {
		t.Fatalf("string price not accepted: %+v %v", in, err)
	}

	out, err := json.Marshal(Product{Price: 129999})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["precio"] != 1299.99 {
		t.Fatalf("unexpected encoded price: %v", decoded["precio"])
	}
}
