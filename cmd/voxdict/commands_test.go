package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/ttsforge/voxdict/pkg/word"
)

func TestReadImportFile(t *testing.T) {
	entry, err := word.NewEntry(word.Spec{Surface: "ボイボ", Pronunciation: "ボイボ", AccentType: 1, Priority: 5})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	id := uuid.NewString()
	doc, err := json.Marshal(map[string]word.SaveFormatEntry{id: word.ToSaveFormat(entry)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "import.json")
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	entries, err := readImportFile(path)
	if err != nil {
		t.Fatalf("read import file: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[id] != entry {
		t.Fatalf("entry mismatch:\n got %+v\nwant %+v", entries[id], entry)
	}
}

func TestReadImportFileRejectsBadEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")
	doc := `{"` + uuid.NewString() + `": {"surface": "あ", "context_id": 1, "cost": 0,
		"part_of_speech": "?", "part_of_speech_detail_1": "*",
		"part_of_speech_detail_2": "*", "part_of_speech_detail_3": "*",
		"inflectional_type": "*", "inflectional_form": "*", "stem": "*",
		"yomi": "ア", "pronunciation": "ア", "accent_type": 0,
		"mora_count": 1, "accent_associative_rule": "*"}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := readImportFile(path); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestReadImportFileMissing(t *testing.T) {
	if _, err := readImportFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
