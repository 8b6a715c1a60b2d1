package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/boxpusher/logger"
)

func init() {
	logger.Silence()
}

const goodPack = `; Good Pack
; Two easy levels

; One
#####
#@$.#
#####

; Two
######
#@ $.#
######
`

func TestText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		valid     bool
		levels    int
		errSubstr string
		warn      string
	}{
		{
			name:   "valid pack",
			text:   goodPack,
			valid:  true,
			levels: 2,
		},
		{
			name:      "rejected level",
			text:      "; P\n\n; Good\n#####\n#@$.#\n#####\n\n; Bad\n#####\n#@$.#\n~~~\n#####\n",
			valid:     false,
			levels:    1,
			errSubstr: "no recognizable glyphs",
		},
		{
			name:      "no playable levels",
			text:      "; Only comments\n",
			valid:     false,
			errSubstr: "no playable levels",
		},
		{
			name:      "fewer boxes than targets",
			text:      "#####\n#@..#\n#####\n",
			valid:     false,
			levels:    1,
			errSubstr: "Only 0 boxes for 2 targets",
		},
		{
			name:      "box in a corner",
			text:      "#####\n#$ @#\n#  .#\n#####\n",
			valid:     false,
			levels:    1,
			errSubstr: "Box stuck in a corner at (1,1)",
		},
		{
			name:   "extra box is a warning",
			text:   "######\n#@$$.#\n#    #\n######\n",
			valid:  true,
			levels: 1,
			warn:   "2 boxes for 1 targets",
		},
		{
			name:   "already solved",
			text:   "####\n#@*#\n####\n",
			valid:  true,
			levels: 1,
			warn:   "Already solved at start",
		},
		{
			name:   "open edge",
			text:   "#####\n#@$. \n#####\n",
			valid:  true,
			levels: 1,
			warn:   "Not enclosed by walls",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Text("test.txt", tt.text)
			if result.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (errors %v, levels %+v)", result.Valid, tt.valid, result.Errors, result.Levels)
			}
			if len(result.Levels) != tt.levels {
				t.Errorf("Expected %d levels, got %d", tt.levels, len(result.Levels))
			}
			if tt.errSubstr != "" && !containsAny(allErrors(result), tt.errSubstr) {
				t.Errorf("Expected an error containing %q, got %v", tt.errSubstr, allErrors(result))
			}
			if tt.warn != "" && !containsAny(allWarnings(result), tt.warn) {
				t.Errorf("Expected a warning containing %q, got %v", tt.warn, allWarnings(result))
			}
		})
	}
}

func TestLevelReport_Counts(t *testing.T) {
	result := Text("good.txt", goodPack)
	if result.Pack != "Good Pack" {
		t.Errorf("Expected pack name 'Good Pack', got %q", result.Pack)
	}

	two := result.Levels[1]
	if two.Name != "Two" || two.Index != 1 {
		t.Errorf("Unexpected level %d %q", two.Index, two.Name)
	}
	if two.Stats.Boxes != 1 || two.Stats.Targets != 1 {
		t.Errorf("Expected 1 box and 1 target, got %+v", two.Stats)
	}
	if two.Reachable != 4 {
		t.Errorf("Expected 4 reachable cells, got %d", two.Reachable)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "good.txt"), []byte(goodPack), 0644)
	os.WriteFile(filepath.Join(dir, "bad.sok"), []byte("#####\n#@..#\n#####\n"), 0644)
	os.WriteFile(filepath.Join(dir, "notes.md"), []byte("not a pack"), 0644)

	results, err := Files([]string{dir})
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 pack files, got %d", len(results))
	}

	var buf bytes.Buffer
	if Report(&buf, results) {
		t.Error("Expected the report to fail with an invalid pack")
	}
	out := buf.String()
	for _, want := range []string{"good.txt", "✅ VALID", "bad.sok", "❌ INVALID", "Some packs have errors"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in report:\n%s", want, out)
		}
	}

	if _, err := Files([]string{filepath.Join(dir, "missing.txt")}); err == nil {
		t.Error("Expected error for a missing path")
	}
}

func TestFile_ReadError(t *testing.T) {
	result := File(filepath.Join(t.TempDir(), "nope.txt"))
	if result.Valid || len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "Failed to read file") {
		t.Errorf("Expected a read error, got %+v", result)
	}
}

func allErrors(r Result) []string {
	errs := append([]string(nil), r.Errors...)
	for _, l := range r.Levels {
		errs = append(errs, l.Errors...)
	}
	return errs
}

func allWarnings(r Result) []string {
	var warns []string
	for _, l := range r.Levels {
		warns = append(warns, l.Warnings...)
	}
	return warns
}

func containsAny(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
