// Package word defines the user-dictionary word model: the in-memory entry,
// the persisted save format, the part-of-speech reference table, and the
// priority/cost conversion in between.
package word

import (
	"fmt"
	"strings"
)

// Entry is one pronunciation-override record as the rest of the system works
// with it. Entries are immutable once created; edits replace the whole value.
type Entry struct {
	Surface               string
	ContextID             int
	Priority              int
	PartOfSpeech          string
	PartOfSpeechDetail1   string
	PartOfSpeechDetail2   string
	PartOfSpeechDetail3   string
	InflectionalType      string
	InflectionalForm      string
	Stem                  string
	Yomi                  string
	Pronunciation         string
	AccentType            int
	MoraCount             int
	AccentAssociativeRule string
}

// SaveFormatEntry is the wire/storage shape of an Entry. It stores a cost
// instead of a priority; the field names are stable for backward
// compatibility with existing dictionary documents.
type SaveFormatEntry struct {
	Surface               string `json:"surface"`
	ContextID             int    `json:"context_id"`
	Cost                  int    `json:"cost"`
	PartOfSpeech          string `json:"part_of_speech"`
	PartOfSpeechDetail1   string `json:"part_of_speech_detail_1"`
	PartOfSpeechDetail2   string `json:"part_of_speech_detail_2"`
	PartOfSpeechDetail3   string `json:"part_of_speech_detail_3"`
	InflectionalType      string `json:"inflectional_type"`
	InflectionalForm      string `json:"inflectional_form"`
	Stem                  string `json:"stem"`
	Yomi                  string `json:"yomi"`
	Pronunciation         string `json:"pronunciation"`
	AccentType            int    `json:"accent_type"`
	MoraCount             int    `json:"mora_count"`
	AccentAssociativeRule string `json:"accent_associative_rule"`
}

// ToSaveFormat converts an Entry into its persisted shape, replacing the
// priority with the derived cost.
func ToSaveFormat(e Entry) SaveFormatEntry {
	return SaveFormatEntry{
		Surface:               e.Surface,
		ContextID:             e.ContextID,
		Cost:                  PriorityToCost(e.ContextID, e.Priority),
		PartOfSpeech:          e.PartOfSpeech,
		PartOfSpeechDetail1:   e.PartOfSpeechDetail1,
		PartOfSpeechDetail2:   e.PartOfSpeechDetail2,
		PartOfSpeechDetail3:   e.PartOfSpeechDetail3,
		InflectionalType:      e.InflectionalType,
		InflectionalForm:      e.InflectionalForm,
		Stem:                  e.Stem,
		Yomi:                  e.Yomi,
		Pronunciation:         e.Pronunciation,
		AccentType:            e.AccentType,
		MoraCount:             e.MoraCount,
		AccentAssociativeRule: e.AccentAssociativeRule,
	}
}

// FromSaveFormat converts a persisted entry back into its in-memory shape and
// validates its grammatical category against the reference table.
func FromSaveFormat(s SaveFormatEntry) (Entry, error) {
	e := Entry{
		Surface:               s.Surface,
		ContextID:             s.ContextID,
		Priority:              CostToPriority(s.ContextID, s.Cost),
		PartOfSpeech:          s.PartOfSpeech,
		PartOfSpeechDetail1:   s.PartOfSpeechDetail1,
		PartOfSpeechDetail2:   s.PartOfSpeechDetail2,
		PartOfSpeechDetail3:   s.PartOfSpeechDetail3,
		InflectionalType:      s.InflectionalType,
		InflectionalForm:      s.InflectionalForm,
		Stem:                  s.Stem,
		Yomi:                  s.Yomi,
		Pronunciation:         s.Pronunciation,
		AccentType:            s.AccentType,
		MoraCount:             s.MoraCount,
		AccentAssociativeRule: s.AccentAssociativeRule,
	}
	if err := ValidateCategory(e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Spec is the caller-facing description of a new or replacement word. Only
// the fields a user reasonably knows are exposed; everything else is filled
// in from the reference table.
type Spec struct {
	Surface       string
	Pronunciation string
	AccentType    int
	WordType      WordType // empty means ProperNoun
	Priority      int
}

// NewEntry validates a Spec and builds a full Entry from it.
func NewEntry(spec Spec) (Entry, error) {
	wordType := spec.WordType
	if wordType == "" {
		wordType = ProperNoun
	}
	pos, ok := PartOfSpeechData(wordType)
	if !ok {
		return Entry{}, fmt.Errorf("unknown word type %q", wordType)
	}
	if spec.Surface == "" {
		return Entry{}, fmt.Errorf("surface must not be empty")
	}
	if spec.Pronunciation == "" {
		return Entry{}, fmt.Errorf("pronunciation must not be empty")
	}
	if spec.Priority < MinPriority || spec.Priority > MaxPriority {
		return Entry{}, fmt.Errorf("priority %d out of range [%d, %d]", spec.Priority, MinPriority, MaxPriority)
	}
	moraCount := CountMorae(spec.Pronunciation)
	if spec.AccentType < 0 || spec.AccentType > moraCount {
		return Entry{}, fmt.Errorf("accent type %d out of range for %d morae", spec.AccentType, moraCount)
	}
	return Entry{
		Surface:               spec.Surface,
		ContextID:             pos.ContextID,
		Priority:              spec.Priority,
		PartOfSpeech:          pos.PartOfSpeech,
		PartOfSpeechDetail1:   pos.Detail1,
		PartOfSpeechDetail2:   pos.Detail2,
		PartOfSpeechDetail3:   pos.Detail3,
		InflectionalType:      "*",
		InflectionalForm:      "*",
		Stem:                  "*",
		Yomi:                  spec.Pronunciation,
		Pronunciation:         spec.Pronunciation,
		AccentType:            spec.AccentType,
		MoraCount:             moraCount,
		AccentAssociativeRule: "*",
	}, nil
}

// smallKana are katakana that combine with the preceding character and do
// not count as a mora on their own.
const smallKana = "ァィゥェォャュョヮ"

// CountMorae counts morae in a katakana pronunciation. The sokuon ッ and the
// long-vowel mark ー each count as one mora.
func CountMorae(pronunciation string) int {
	n := 0
	for _, r := range pronunciation {
		if strings.ContainsRune(smallKana, r) {
			continue
		}
		n++
	}
	return n
}
