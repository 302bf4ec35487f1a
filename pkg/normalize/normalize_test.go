package normalize

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"CAFÉ_NN", "cafe"},
		{"house_NOUN", "house"},
		{"Élodie", "elodie"},
		{"naïve", "naive"},
		{"FRANÇOIS", "francois"},
		{"Ñoño", "nono"},
		{"don't", "dont"},
		{"co-operate", "cooperate"},
		{"1st", "1st"},
		{"ﬁne", "fine"}, // compatibility ligature
		{"straße", "strae"},
		{"_NOUN", ""},
		{"", ""},
		{"TestBl$a'h-foo.bar.áÉìÒüẄŷẐ_FOO_BAR", "testblahfoobaraeiouwyz"},
	}
	for _, tt := range tests {
		got := Canonical(tt.input)
		if got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCanonical_Idempotent(t *testing.T) {
	for _, input := range []string{"CAFÉ_NN", "Ærøskøbing", "ab ab", "x_y_z", "日本語", "ÅNGSTRÖM", "\xff\xfeabc"} {
		once := Canonical(input)
		if twice := Canonical(once); twice != once {
			t.Errorf("Canonical(Canonical(%q)) = %q, want %q", input, twice, once)
		}
	}
}

func TestUnannotated(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"New_York", "newyork"},
		{"CAFÉ_NN", "cafenn"},
		{"", ""},
	}
	for _, tt := range tests {
		got := Unannotated(tt.input)
		if got != tt.want {
			t.Errorf("Unannotated(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsAlpha(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"abc", true},
		{"ABC", true},
		{"a1", false},
		{"123", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAlpha(tt.key); got != tt.want {
			t.Errorf("IsAlpha(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		mode  string
		input string
		want  string
	}{
		{"canonical", "New_York", "new"},
		{"unannotated", "New_York", "newyork"},
		{"", "New_York", "new"},             // default = canonical
		{"unknown_mode", "New_York", "new"}, // fallback = canonical
	}
	for _, tt := range tests {
		fn := Get(tt.mode)
		got := fn(tt.input)
		if got != tt.want {
			t.Errorf("Get(%q)(%q) = %q, want %q", tt.mode, tt.input, got, tt.want)
		}
	}
}
