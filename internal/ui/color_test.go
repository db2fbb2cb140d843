package ui

import (
	"os"
	"strings"
	"testing"
)

func TestStatusFunctions(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := []struct {
		name  string
		fn    func(string) string
		input string
		want  string
	}{
		{"StatusSuccess empty", StatusSuccess, "", SymbolSuccess},
		{"StatusSuccess with msg", StatusSuccess, "merged", SymbolSuccess + " merged"},
		{"StatusError with msg", StatusError, "2 conflicts", SymbolError + " 2 conflicts"},
		{"StatusWarning with msg", StatusWarning, "review", SymbolWarning + " review"},
		{"StatusSkipped empty", StatusSkipped, "", SymbolSkipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigureColors(t *testing.T) {
	initial := IsColorEnabled()
	defer func() {
		if initial {
			EnableColors()
		} else {
			DisableColors()
		}
	}()

	if err := ConfigureColors(ColorAlways, nil); err != nil || !IsColorEnabled() {
		t.Errorf("always: enabled=%v err=%v", IsColorEnabled(), err)
	}
	if err := ConfigureColors(ColorNever, nil); err != nil || IsColorEnabled() {
		t.Errorf("never: enabled=%v err=%v", IsColorEnabled(), err)
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	EnableColors()
	if err := ConfigureColors(ColorAuto, f); err != nil || IsColorEnabled() {
		t.Errorf("auto on a regular file should disable color: enabled=%v err=%v", IsColorEnabled(), err)
	}

	if err := ConfigureColors("sometimes", nil); err == nil {
		t.Error("invalid mode should fail")
	}
}

func TestColorMode_IsValid(t *testing.T) {
	for _, m := range []ColorMode{ColorAuto, ColorAlways, ColorNever} {
		if !m.IsValid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if ColorMode("rainbow").IsValid() {
		t.Error("rainbow should be invalid")
	}
}

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"delete-edit-conflict": "Delete Edit Conflict",
		"prefer-ours":          "Prefer Ours",
		"":                     "",
	}
	for in, want := range tests {
		if got := Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTable(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tbl := NewTable("TAG", "POLICY")
	tbl.Row("entry", "prefer-ours")
	tbl.StyledRow([]func(...any) string{Info}, "日本", "x")

	var sb strings.Builder
	if err := tbl.Write(&sb); err != nil {
		t.Fatal(err)
	}
	want := "TAG    POLICY\n" +
		"entry  prefer-ours\n" +
		"日本   x\n"
	if sb.String() != want {
		t.Errorf("Write() =\n%q\nwant\n%q", sb.String(), want)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 4); got != "abc…" {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("abc", 4); got != "abc" {
		t.Errorf("Truncate() = %q", got)
	}
}
