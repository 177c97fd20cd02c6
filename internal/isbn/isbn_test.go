// file: internal/isbn/isbn_test.go
// version: 1.0.0
// guid: c22219b2-b350-43b6-9b8b-3d11bca6885d

package isbn

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"978-0-13-468599-1", "9780134685991"},
		{"978 2 07 036028 4", "9782070360284"},
		{"9782070360284", "9782070360284"},
		{"", ""},
		{"  - - ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"978-0-13-468599-1", "0-13-468599-7", "not an isbn", ""}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestToISBN10(t *testing.T) {
	got, err := ToISBN10("978-0-13-468599-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0134685997" {
		t.Errorf("expected 0134685997, got %q", got)
	}
}

func TestToISBN10Passthrough(t *testing.T) {
	got, err := ToISBN10("0-13-468599-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0134685997" {
		t.Errorf("expected 0134685997, got %q", got)
	}
}

func TestToISBN10CheckDigitX(t *testing.T) {
	// 978-0-8044-2957-3 maps to ISBN-10 with check digit X
	got, err := ToISBN10("9780804429573")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[len(got)-1] != 'X' {
		t.Errorf("expected trailing X check digit, got %q", got)
	}
}

func TestToISBN10Invalid(t *testing.T) {
	for _, in := range []string{"12345", "9790134685991", "978013468599a"} {
		if _, err := ToISBN10(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}
