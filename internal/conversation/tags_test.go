package conversation

import "testing"

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Doctors", "doctor"},
		{"physician", "doctor"},
		{"surgeons", "doctor"},
		{"  MLA  ", "mla"},
		{"advocates", "lawyer"},
		{"Teachers", "teacher"},
		{"plumber", "plumber"}, // unknown passes through
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTag(tt.in); got != tt.want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTagIdempotent(t *testing.T) {
	for _, in := range []string{"Doctors", "physicians", "MPs", "plumber"} {
		once := NormalizeTag(in)
		if twice := NormalizeTag(once); twice != once {
			t.Errorf("NormalizeTag not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
