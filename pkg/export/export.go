// Package export serializes the base dictionary plus the user dictionary
// into the line-oriented CSV text the external compiler consumes.
package export

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ttsforge/voxdict/pkg/word"
)

// MissingBaseDictError reports an absent base dictionary source. A compiled
// index built without the base dictionary would be linguistically
// incomplete, so the condition is surfaced rather than skipped.
type MissingBaseDictError struct {
	Path string
}

func (e *MissingBaseDictError) Error() string {
	return fmt.Sprintf("base dictionary not found at %s", e.Path)
}

// Formatter builds compiler input from the factory-shipped base dictionary
// and a user dictionary.
type Formatter struct {
	baseDictPath string
}

// New returns a Formatter reading base entries from baseDictPath.
func New(baseDictPath string) *Formatter {
	return &Formatter{baseDictPath: baseDictPath}
}

// BaseDictPath returns the location of the base dictionary source.
func (f *Formatter) BaseDictPath() string { return f.baseDictPath }

// Format emits the base dictionary verbatim followed by one CSV line per
// user entry. User entries are ordered by id so the output is deterministic.
func (f *Formatter) Format(dict map[string]word.Entry) (string, error) {
	base, err := os.ReadFile(f.baseDictPath)
	if os.IsNotExist(err) {
		return "", &MissingBaseDictError{Path: f.baseDictPath}
	}
	if err != nil {
		return "", fmt.Errorf("read base dictionary: %w", err)
	}

	var b strings.Builder
	b.Write(base)
	if len(base) > 0 && base[len(base)-1] != '\n' {
		b.WriteByte('\n')
	}

	ids := make([]string, 0, len(dict))
	for id := range dict {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		b.WriteString(FormatEntry(dict[id]))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// FormatEntry renders one entry as a compiler CSV line. The field order is
// fixed by the compiler: surface, left/right context ids, cost, the four
// part-of-speech fields, inflection type/form, stem, yomi, pronunciation,
// accent_type/mora_count, accent-associative rule.
func FormatEntry(e word.Entry) string {
	return fmt.Sprintf("%s,%d,%d,%d,%s,%s,%s,%s,%s,%s,%s,%s,%s,%d/%d,%s",
		e.Surface,
		e.ContextID,
		e.ContextID,
		word.PriorityToCost(e.ContextID, e.Priority),
		e.PartOfSpeech,
		e.PartOfSpeechDetail1,
		e.PartOfSpeechDetail2,
		e.PartOfSpeechDetail3,
		e.InflectionalType,
		e.InflectionalForm,
		e.Stem,
		e.Yomi,
		e.Pronunciation,
		e.AccentType,
		e.MoraCount,
		e.AccentAssociativeRule,
	)
}
