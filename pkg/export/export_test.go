package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ttsforge/voxdict/pkg/word"
)

const baseLine = "東京,1348,1348,8609,名詞,固有名詞,一般,*,*,*,*,トウキョウ,トウキョウ,0/5,*"

func writeBaseDict(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "default.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write base dictionary: %v", err)
	}
	return path
}

func TestFormatMissingBaseDict(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "no_such.csv"))
	_, err := f.Format(map[string]word.Entry{})
	var missing *MissingBaseDictError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingBaseDictError, got %v", err)
	}
}

func TestFormatBaseFirstThenUser(t *testing.T) {
	// Base file without trailing newline: Format must add one before the
	// user entries.
	f := New(writeBaseDict(t, baseLine))

	entry, err := word.NewEntry(word.Spec{Surface: "ボイボ", Pronunciation: "ボイボ", AccentType: 1, Priority: 5})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	out, err := f.Format(map[string]word.Entry{uuid.NewString(): entry})
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if lines[0] != baseLine {
		t.Errorf("base line not first or not verbatim: %s", lines[0])
	}
	wantUser := "ボイボ,1348,1348," // surface then left/right context ids
	if !strings.HasPrefix(lines[1], wantUser) {
		t.Errorf("user line %q does not start with %q", lines[1], wantUser)
	}
	if !strings.Contains(lines[1], ",1/3,") {
		t.Errorf("user line %q missing accent_type/mora_count field", lines[1])
	}
}

func TestFormatDeterministicOrder(t *testing.T) {
	f := New(writeBaseDict(t, baseLine+"\n"))
	dict := map[string]word.Entry{}
	for _, surface := range []string{"ア", "イ", "ウ", "エ", "オ"} {
		entry, err := word.NewEntry(word.Spec{Surface: surface, Pronunciation: surface, Priority: 5})
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		dict[uuid.NewString()] = entry
	}
	first, err := f.Format(dict)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := f.Format(dict)
		if err != nil {
			t.Fatalf("format: %v", err)
		}
		if again != first {
			t.Fatal("output order not deterministic across calls")
		}
	}
}

func TestFormatEntryFieldCount(t *testing.T) {
	entry, err := word.NewEntry(word.Spec{Surface: "歌う", Pronunciation: "ウタウ", WordType: word.Verb, Priority: 3})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	line := FormatEntry(entry)
	if got := len(strings.Split(line, ",")); got != 15 {
		t.Fatalf("expected 15 CSV fields, got %d: %s", got, line)
	}
}
