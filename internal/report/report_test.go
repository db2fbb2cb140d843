package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/klauern/lexmerge/internal/logging"
	"github.com/klauern/lexmerge/internal/tree"
	"github.com/klauern/lexmerge/internal/ui"
)

func glossPath() tree.Path {
	return tree.Root("lift").Child("entry", 1).Child("sense", 1).Child("gloss", 2)
}

func TestKind_Class(t *testing.T) {
	for _, k := range AllKinds() {
		if !k.IsValid() {
			t.Errorf("%s should be valid", k)
		}
		want := ClassConflict
		if strings.HasSuffix(string(k), "-warning") {
			want = ClassWarning
		}
		if k.Class() != want {
			t.Errorf("%s.Class() = %s, want %s", k, k.Class(), want)
		}
		if k.Description() == "Unknown kind" {
			t.Errorf("%s has no description", k)
		}
	}
	if Kind("oops").IsValid() {
		t.Error("unknown kind should be invalid")
	}
}

func TestReporter_AppendOnly(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(logging.New(logging.Options{Level: logging.LevelDebug, Output: &buf}))

	p := glossPath()
	same := Record{Kind: KindTextConflict, Path: p, Description: "same text", Ancestor: Text("a"), Ours: Text("b"), Theirs: Text("c"), Resolution: ResolutionOurs}
	r.Record(same)
	r.Record(same)
	p[0].Tag = "mutated"
	r.Record(Record{Kind: KindDuplicateMatchWarning, Path: tree.Root("lift"), Description: "dup", Resolution: ResolutionFirstMatch})

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (no deduplication)", r.Len())
	}
	recs := r.Records()
	if recs[0].Path.String() != "/lift/entry[1]/sense[1]/gloss[2]" {
		t.Errorf("record path aliased caller slice: %s", recs[0].Path)
	}
	if recs[2].Kind != KindDuplicateMatchWarning {
		t.Errorf("records out of order: %v", recs)
	}

	recs[0].Description = "changed"
	if r.Records()[0].Description != "same text" {
		t.Error("Records() should return a copy")
	}
	if !strings.Contains(buf.String(), "kind=text-conflict") {
		t.Errorf("expected debug log per record, got: %s", buf.String())
	}
}

func TestRecord_Diff(t *testing.T) {
	tests := []struct {
		name   string
		ours   Value
		theirs Value
		want   string
	}{
		{"replace word", Text("a big cat"), Text("a small cat"), "a [-big-]{+small+} cat"},
		{"append", Text("cat"), Text("cats"), "cat{+s+}"},
		{"equal", Text("x"), Text("x"), ""},
		{"absent", Absent(), Text("x"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{Kind: KindTextConflict, Ours: tt.ours, Theirs: tt.theirs}
			if got := r.Diff(); got != tt.want {
				t.Errorf("Diff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_JSON(t *testing.T) {
	rec := Record{
		Kind:       KindAttributeConflict,
		Path:       glossPath(),
		Ancestor:   Absent(),
		Ours:       Text("en"),
		Theirs:     Text(""),
		Resolution: ResolutionOurs,
		Review:     true,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"ancestor":null`, `"ours":"en"`, `"theirs":""`, `"path":"/lift/entry[1]/sense[1]/gloss[2]"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s should contain %s", data, want)
		}
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rec, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterAndCount(t *testing.T) {
	recs := []Record{
		{Kind: KindTextConflict},
		{Kind: KindDuplicateMatchWarning},
		{Kind: KindTextConflict},
	}
	if got := len(Filter(recs, ClassConflict)); got != 2 {
		t.Errorf("conflicts = %d, want 2", got)
	}
	if got := len(Filter(recs, ClassWarning)); got != 1 {
		t.Errorf("warnings = %d, want 1", got)
	}
	want := map[Kind]int{KindTextConflict: 2, KindDuplicateMatchWarning: 1}
	if diff := cmp.Diff(want, CountByKind(recs)); diff != "" {
		t.Errorf("CountByKind() mismatch (-want +got):\n%s", diff)
	}
}

func TestNotes(t *testing.T) {
	recs := []Record{
		{
			Kind: KindDeleteEditConflict, Path: glossPath(), Description: "deleted by ours",
			Ancestor: Text("<gloss/>"), Ours: Absent(), Theirs: Text("<gloss>x</gloss>"),
			Resolution: ResolutionKeptEdit,
		},
		{Kind: KindDuplicateMatchWarning, Path: tree.Root("lift"), Description: "dup", Resolution: ResolutionFirstMatch, Review: true},
	}
	n := Notes(recs)
	if err := tree.Validate(n); err != nil {
		t.Fatalf("notes document invalid: %v", err)
	}
	want := `<merge-notes version="1" conflicts="1" warnings="1">` +
		`<conflict kind="delete-edit-conflict" path="/lift/entry[1]/sense[1]/gloss[2]" resolution="kept-edit">` +
		`<description>deleted by ours</description>` +
		`<ancestor>&lt;gloss/&gt;</ancestor>` +
		`<theirs>&lt;gloss&gt;x&lt;/gloss&gt;</theirs>` +
		`</conflict>` +
		`<warning kind="duplicate-match-warning" path="/lift" resolution="first-match" review="true">` +
		`<description>dup</description>` +
		`</warning>` +
		`</merge-notes>`
	if got := n.String(); got != want {
		t.Errorf("Notes() =\n%s\nwant\n%s", got, want)
	}
}

func TestWrite(t *testing.T) {
	ui.DisableColors()
	defer ui.EnableColors()

	recs := []Record{
		{Kind: KindTextConflict, Path: glossPath(), Description: "gloss text", Ours: Text("cat"), Theirs: Text("cats"), Resolution: ResolutionOurs, Review: true},
	}
	s := Summarize("dict.lift", recs)
	if s.Conflicts != 1 || s.Warnings != 0 {
		t.Fatalf("Summarize() = %+v", s)
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatText, s); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{"dict.lift: 1 conflict, 0 warnings", "text-conflict /lift/entry[1]/sense[1]/gloss[2] -> ours (review)", "cat{+s+}"} {
			if !strings.Contains(out, want) {
				t.Errorf("text output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatJSON, s); err != nil {
			t.Fatal(err)
		}
		var got Summary
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got.Document != "dict.lift" || len(got.Records) != 1 {
			t.Errorf("decoded %+v", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatYAML, s, Summarize("other.lift", nil)); err != nil {
			t.Fatal(err)
		}
		var got []map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0]["document"] != "dict.lift" {
			t.Errorf("decoded %v", got)
		}
		if !strings.Contains(buf.String(), "/lift/entry[1]/sense[1]/gloss[2]") {
			t.Errorf("path should render as text:\n%s", buf.String())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := Write(&bytes.Buffer{}, "xml", s); err == nil {
			t.Error("unknown format should fail")
		}
	})
}

func TestWriteDetails(t *testing.T) {
	ui.DisableColors()
	defer ui.EnableColors()

	recs := []Record{
		{Kind: KindDeleteEditConflict, Path: glossPath(), Ancestor: Text("dog"), Theirs: Text("hound"), Resolution: ResolutionKeptEdit},
		{Kind: KindDuplicateMatchWarning, Path: glossPath(), Description: "dup", Resolution: ResolutionFirstMatch},
	}
	var buf bytes.Buffer
	if err := WriteDetails(&buf, 90, recs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"delete-edit-conflict /lift/entry[1]/sense[1]/gloss[2]", "ANCESTOR", "hound", "(absent)"} {
		if !strings.Contains(out, want) {
			t.Errorf("details missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "duplicate-match-warning") {
		t.Errorf("warnings should be skipped:\n%s", out)
	}
}
