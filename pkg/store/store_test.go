package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ttsforge/voxdict/pkg/word"
)

func testEntry(t *testing.T, surface, pron string) word.Entry {
	t.Helper()
	entry, err := word.NewEntry(word.Spec{Surface: surface, Pronunciation: pron, Priority: 5})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	return entry
}

func TestReadMissingDocument(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "user_dict.json"))
	dict, err := s.Read()
	if err != nil {
		t.Fatalf("read missing document: %v", err)
	}
	if len(dict) != 0 {
		t.Fatalf("expected empty dictionary, got %d entries", len(dict))
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "user_dict.json"))
	dict := map[string]word.Entry{
		uuid.NewString(): testEntry(t, "ボイボ", "ボイボ"),
		uuid.NewString(): testEntry(t, "東京", "トウキョウ"),
	}
	if err := s.Write(dict); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, dict) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, dict)
	}
}

func TestWriteReplacesWholeDocument(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "user_dict.json"))
	id := uuid.NewString()
	if err := s.Write(map[string]word.Entry{id: testEntry(t, "ボイボ", "ボイボ")}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := s.Write(map[string]word.Entry{}); err != nil {
		t.Fatalf("second write: %v", err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty dictionary after replacement, got %d entries", len(got))
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "user_dict.json"))
	if err := s.Write(map[string]word.Entry{uuid.NewString(): testEntry(t, "猫", "ネコ")}); err != nil {
		t.Fatalf("write: %v", err)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, f := range files {
		if strings.HasPrefix(f.Name(), ".userdict-") {
			t.Fatalf("temp file %s left behind", f.Name())
		}
	}
}

func TestReadCorruptJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_dict.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := New(path).Read()
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
}

func TestReadRejectsNonUUIDKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_dict.json")
	doc := `{"not-a-uuid": {"surface": "あ", "context_id": 1348, "cost": 8609,
		"part_of_speech": "名詞", "part_of_speech_detail_1": "固有名詞",
		"part_of_speech_detail_2": "一般", "part_of_speech_detail_3": "*",
		"inflectional_type": "*", "inflectional_form": "*", "stem": "*",
		"yomi": "ア", "pronunciation": "ア", "accent_type": 0,
		"mora_count": 1, "accent_associative_rule": "*"}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := New(path).Read()
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError for non-UUID key, got %v", err)
	}
}

func TestReadRejectsBadCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_dict.json")
	doc := `{"` + uuid.NewString() + `": {"surface": "あ", "context_id": 42, "cost": 0,
		"part_of_speech": "名詞", "part_of_speech_detail_1": "*",
		"part_of_speech_detail_2": "*", "part_of_speech_detail_3": "*",
		"inflectional_type": "*", "inflectional_form": "*", "stem": "*",
		"yomi": "ア", "pronunciation": "ア", "accent_type": 0,
		"mora_count": 1, "accent_associative_rule": "*"}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := New(path).Read()
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError for unknown category, got %v", err)
	}
}
