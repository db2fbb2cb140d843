package e2e_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/lexmerge/internal/e2e"
)

var (
	cat = e2e.Entry{ID: "cat", Glosses: []string{"en", "cat", "fr", "chat"}}
	dog = e2e.Entry{ID: "dog", Glosses: []string{"en", "dog"}}
	fox = e2e.Entry{ID: "fox", Glosses: []string{"en", "fox"}}
)

// triple writes ancestor, ours and theirs documents and returns their paths.
func triple(f *e2e.Fixture, ours, theirs []e2e.Entry) (a, o, th string) {
	a = f.WriteLIFT("ancestor.lift", cat, dog)
	o = f.WriteLIFT("ours.lift", ours...)
	th = f.WriteLIFT("theirs.lift", theirs...)
	return a, o, th
}

// TestVersionCommand verifies the version command works correctly.
func TestVersionCommand(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("version")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "lexmerge version")
}

// TestMergeDriverWorkflow merges in place the way a version control merge
// driver would, then restores the overwritten revision from its backup.
func TestMergeDriverWorkflow(t *testing.T) {
	h := e2e.NewHarness(t)
	f := h.TempFixture()
	a, o, th := triple(f,
		[]e2e.Entry{cat, {ID: "dog", Glosses: []string{"en", "dog", "de", "Hund"}}},
		[]e2e.Entry{cat, dog, fox},
	)
	original := f.ReadFile("ours.lift")

	result := h.Run("merge", "--in-place", a, o, th)
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "0 conflicts, 0 warnings")
	e2e.AssertFileContains(t, o, `<gloss lang="de">Hund</gloss>`)
	e2e.AssertFileContains(t, o, `<entry id="fox">`)
	e2e.AssertFileNotExists(t, f.Path("ours.merge-notes.lift"))

	result = h.Run("backup", "list", "--format", "json", "--file", o)
	e2e.AssertSuccess(t, result)
	var backups []struct {
		ID         string `json:"id"`
		SourcePath string `json:"source_path"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &backups); err != nil {
		t.Fatalf("backup list is not JSON: %v\n%s", err, result.Stdout)
	}
	if len(backups) != 1 {
		t.Fatalf("expected one backup, got %+v", backups)
	}
	if _, err := os.Stat(h.BackupDir()); err != nil {
		t.Errorf("backups should live under the data directory: %v", err)
	}

	result = h.Run("backup", "restore", backups[0].ID)
	e2e.AssertSuccess(t, result)
	if got := f.ReadFile("ours.lift"); got != original {
		t.Errorf("restore should bring back ours as it was before the merge\ngot: %s", got)
	}
}

// TestMergeToStdoutRoundTrips feeds a merge written to stdout back into check.
func TestMergeToStdoutRoundTrips(t *testing.T) {
	h := e2e.NewHarness(t)
	f := h.TempFixture()
	a, o, th := triple(f, []e2e.Entry{cat, dog, fox}, []e2e.Entry{dog})

	result := h.Run("merge", a, o, th)
	e2e.AssertSuccess(t, result)
	e2e.AssertStderrContains(t, result, "ours.lift: 0 conflicts")
	e2e.AssertOutputNotContains(t, result, `<entry id="cat">`)

	merged := f.WriteFile("merged.lift", result.Stdout)
	result = h.Run("check", merged)
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "merged.lift: <lift>")
}

// TestMergeConflictNotes verifies a conflicting merge keeps our text and
// writes the records next to the output.
func TestMergeConflictNotes(t *testing.T) {
	h := e2e.NewHarness(t)
	f := h.TempFixture()
	a, o, th := triple(f,
		[]e2e.Entry{{ID: "cat", Glosses: []string{"en", "house cat", "fr", "chat"}}, dog},
		[]e2e.Entry{{ID: "cat", Glosses: []string{"en", "kitty", "fr", "chat"}}, dog},
	)
	out := f.Path("out/merged.lift")

	result := h.Run("merge", "-o", out, a, o, th)
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "1 conflict, 0 warnings")
	e2e.AssertOutputContains(t, result, "/lift/entry[1]/sense[1]/gloss[1]")
	e2e.AssertOutputContains(t, result, "(review)")

	e2e.AssertFileContains(t, out, "house cat")
	notes := f.Path("out/merged.merge-notes.lift")
	e2e.AssertFileContains(t, notes, `<merge-notes version="1" conflicts="1" warnings="0">`)
	e2e.AssertFileContains(t, notes, `kind="text-conflict"`)
	e2e.AssertFileContains(t, notes, "<theirs>kitty</theirs>")
}

// TestFailOnConflictExitCode verifies the merge exits non-zero for conflicts
// only when asked to.
func TestFailOnConflictExitCode(t *testing.T) {
	h := e2e.NewHarness(t)
	f := h.TempFixture()
	a, o, th := triple(f,
		[]e2e.Entry{cat},
		[]e2e.Entry{cat, {ID: "dog", Glosses: []string{"en", "hound"}}},
	)

	result := h.Run("merge", "-o", f.Path("m.lift"), a, o, th)
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "delete-edit-conflict")
	e2e.AssertOutputNotContains(t, result, "ANCESTOR")

	result = h.Run("merge", "--details", "-o", f.Path("m.lift"), a, o, th)
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "ANCESTOR")
	e2e.AssertOutputContains(t, result, "hound")
	e2e.AssertOutputContains(t, result, "(absent)")

	result = h.Run("merge", "--fail-on-conflict", "-o", f.Path("m.lift"), a, o, th)
	e2e.AssertExitCode(t, result, 1)
	e2e.AssertErrorContains(t, result, "unresolved conflicts")
}

// TestConfigFileDrivesMerge verifies settings are read from the config file.
func TestConfigFileDrivesMerge(t *testing.T) {
	h := e2e.NewHarness(t)
	h.WriteConfig(`merge:
  write_notes: false
output:
  format: json
  indent: ""
`)
	f := h.TempFixture()
	a, o, th := triple(f,
		[]e2e.Entry{{ID: "cat", Glosses: []string{"en", "tomcat", "fr", "chat"}}, dog},
		[]e2e.Entry{{ID: "cat", Glosses: []string{"en", "kitty", "fr", "chat"}}, dog},
	)
	out := f.Path("merged.lift")

	result := h.Run("merge", "-o", out, a, o, th)
	e2e.AssertSuccess(t, result)
	if !strings.HasPrefix(strings.TrimSpace(result.Stdout), "{") {
		t.Errorf("expected a JSON report, got: %s", result.Stdout)
	}
	e2e.AssertFileNotExists(t, f.Path("merged.merge-notes.lift"))
	e2e.AssertFileContains(t, out, `<lift version="0.13"><entry id="cat">`)

	result = h.Run("config")
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "format: json")
	e2e.AssertOutputNotContains(t, result, "not found")
}

// TestStrategiesFile verifies a strategies file changes how elements merge.
func TestStrategiesFile(t *testing.T) {
	h := e2e.NewHarness(t)
	f := h.TempFixture()
	strategies := f.WriteFile("strategies.toml", `[elements.sense]
atomic = true
policy = "prefer-theirs"
`)
	a, o, th := triple(f,
		[]e2e.Entry{{ID: "cat", Glosses: []string{"en", "house cat", "fr", "chat"}}, dog},
		[]e2e.Entry{{ID: "cat", Glosses: []string{"en", "cat", "fr", "minou"}}, dog},
	)
	out := f.Path("merged.lift")

	result := h.Run("strategies", "--strategies", strategies)
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "prefer-theirs")

	result = h.Run("merge", "-s", strategies, "-o", out, a, o, th)
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "atomic-conflict")
	e2e.AssertFileContains(t, out, "minou")
	e2e.AssertFileNotContains(t, out, "house cat")
}

// TestBatchWorkflow merges a directory tree of documents.
func TestBatchWorkflow(t *testing.T) {
	h := e2e.NewHarness(t)
	f := h.TempFixture()
	for _, dir := range []string{"base", "mine", "yours"} {
		f.WriteLIFT(filepath.Join(dir, "animals.lift"), cat, dog)
		f.WriteLIFT(filepath.Join(dir, "nested", "plants.lift"), e2e.Entry{ID: "oak", Glosses: []string{"en", "oak"}})
	}
	f.WriteLIFT("mine/animals.lift", cat, dog, fox)
	f.WriteLIFT("yours/nested/plants.lift", e2e.Entry{ID: "oak", Glosses: []string{"en", "oak", "fr", "chêne"}})
	f.WriteFile("mine/notes.txt", "not a lexicon")

	result := h.Run("batch",
		"--ancestor", f.Path("base"),
		"--ours", f.Path("mine"),
		"--theirs", f.Path("yours"),
		"--output", f.Path("merged"),
	)
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "animals.lift")
	e2e.AssertOutputContains(t, result, "nested/plants.lift")
	e2e.AssertOutputContains(t, result, "2 merged cleanly, 0 with conflicts, 0 failed")
	e2e.AssertFileContains(t, f.Path("merged/animals.lift"), `<entry id="fox">`)
	e2e.AssertFileContains(t, f.Path("merged/nested/plants.lift"), "chêne")
	e2e.AssertFileNotExists(t, f.Path("merged/notes.txt"))

	result = h.Run("batch",
		"--ancestor", f.Path("base"),
		"--ours", f.Path("mine"),
		"--theirs", f.Path("yours"),
		"--in-place",
	)
	e2e.AssertSuccess(t, result)
	e2e.AssertFileContains(t, f.Path("mine/nested/plants.lift"), "chêne")

	result = h.Run("backup", "stats")
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "Backups:   2 of 2 files")
}

// TestCheckReportsDuplicates verifies check flags keys that repeat among
// siblings.
func TestCheckReportsDuplicates(t *testing.T) {
	h := e2e.NewHarness(t)
	f := h.TempFixture()
	path := f.WriteLIFT("dups.lift", cat, dog, e2e.Entry{ID: "cat", Glosses: []string{"en", "feline"}})

	result := h.Run("check", path)
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "1 duplicate keys")
	e2e.AssertOutputContains(t, result, "/lift/entry[3]")

	result = h.Run("check", f.WriteFile("broken.lift", "<lift><entry id='x'></lift>"))
	e2e.AssertError(t, result)
}

// TestConfigInit verifies a default config file can be written and read back.
func TestConfigInit(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("config", "init")
	e2e.AssertSuccess(t, result)
	e2e.AssertFileContains(t, h.ConfigPath(), "preset: lexicon")

	result = h.Run("config", "init")
	e2e.AssertErrorContains(t, result, "already exists")

	result = h.Run("config", "path")
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, h.ConfigPath())
}
