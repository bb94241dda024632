package word

import "fmt"

// WordType identifies one of the grammatical categories a user word may take.
type WordType string

const (
	ProperNoun WordType = "PROPER_NOUN"
	CommonNoun WordType = "COMMON_NOUN"
	Verb       WordType = "VERB"
	Adjective  WordType = "ADJECTIVE"
	Suffix     WordType = "SUFFIX"
)

// PartOfSpeech is one row of the fixed reference table the analyzer's
// dictionary format is built around. The cost candidates map user-facing
// priority levels (0..10) onto analyzer-internal word costs; index 0 holds
// the cost for the highest priority.
type PartOfSpeech struct {
	ContextID              int
	PartOfSpeech           string
	Detail1                string
	Detail2                string
	Detail3                string
	CostCandidates         []int
	AccentAssociativeRules []string
}

const (
	MinPriority = 0
	MaxPriority = 10
)

var nounRules = []string{"*", "C1", "C2", "C3", "C4", "C5"}

// partOfSpeechData is fixed at build time and never mutated. Context ids and
// cost candidate tables follow the analyzer's bundled IPA-style dictionary.
var partOfSpeechData = map[WordType]PartOfSpeech{
	ProperNoun: {
		ContextID:              1348,
		PartOfSpeech:           "名詞",
		Detail1:                "固有名詞",
		Detail2:                "一般",
		Detail3:                "*",
		CostCandidates:         []int{-988, 3488, 4768, 6048, 7328, 8609, 8734, 8859, 8984, 9110, 14176},
		AccentAssociativeRules: nounRules,
	},
	CommonNoun: {
		ContextID:              1345,
		PartOfSpeech:           "名詞",
		Detail1:                "一般",
		Detail2:                "*",
		Detail3:                "*",
		CostCandidates:         []int{-4445, 49, 1473, 2897, 4321, 5746, 6554, 7362, 8170, 8979, 15001},
		AccentAssociativeRules: nounRules,
	},
	Verb: {
		ContextID:              642,
		PartOfSpeech:           "動詞",
		Detail1:                "自立",
		Detail2:                "*",
		Detail3:                "*",
		CostCandidates:         []int{3100, 6160, 6360, 6561, 6761, 6962, 7414, 7866, 8318, 8771, 13433},
		AccentAssociativeRules: []string{"*"},
	},
	Adjective: {
		ContextID:              19,
		PartOfSpeech:           "形容詞",
		Detail1:                "自立",
		Detail2:                "*",
		Detail3:                "*",
		CostCandidates:         []int{1527, 3266, 3561, 3857, 4153, 4449, 5149, 5849, 6549, 7250, 10001},
		AccentAssociativeRules: []string{"*"},
	},
	Suffix: {
		ContextID:              1358,
		PartOfSpeech:           "名詞",
		Detail1:                "接尾",
		Detail2:                "一般",
		Detail3:                "*",
		CostCandidates:         []int{4399, 5373, 6041, 6710, 7378, 8047, 9440, 10834, 12228, 13622, 15847},
		AccentAssociativeRules: []string{"*"},
	},
}

// PartOfSpeechData returns the reference-table row for the given word type.
func PartOfSpeechData(t WordType) (PartOfSpeech, bool) {
	pos, ok := partOfSpeechData[t]
	return pos, ok
}

// posByContextID finds the reference-table row matching a context id.
func posByContextID(contextID int) (PartOfSpeech, bool) {
	for _, pos := range partOfSpeechData {
		if pos.ContextID == contextID {
			return pos, true
		}
	}
	return PartOfSpeech{}, false
}

// UnsupportedCategoryError reports an entry whose grammatical fields do not
// match any row of the part-of-speech reference table.
type UnsupportedCategoryError struct {
	ContextID int
	Detail    string
}

func (e *UnsupportedCategoryError) Error() string {
	return fmt.Sprintf("unsupported part of speech (context id %d): %s", e.ContextID, e.Detail)
}

// ValidateCategory checks that the entry's category fields exactly match one
// reference-table row and that its accent-associative rule is allowed for
// that row.
func ValidateCategory(e Entry) error {
	pos, ok := posByContextID(e.ContextID)
	if !ok {
		return &UnsupportedCategoryError{ContextID: e.ContextID, Detail: "unknown context id"}
	}
	if e.PartOfSpeech != pos.PartOfSpeech ||
		e.PartOfSpeechDetail1 != pos.Detail1 ||
		e.PartOfSpeechDetail2 != pos.Detail2 ||
		e.PartOfSpeechDetail3 != pos.Detail3 {
		return &UnsupportedCategoryError{ContextID: e.ContextID, Detail: "part of speech fields do not match reference table"}
	}
	for _, r := range pos.AccentAssociativeRules {
		if e.AccentAssociativeRule == r {
			return nil
		}
	}
	return &UnsupportedCategoryError{
		ContextID: e.ContextID,
		Detail:    fmt.Sprintf("accent associative rule %q not allowed", e.AccentAssociativeRule),
	}
}

// PriorityToCost converts a user-facing priority into the analyzer cost for
// the given context id. Priorities outside [MinPriority, MaxPriority] are
// clamped.
func PriorityToCost(contextID, priority int) int {
	pos, ok := posByContextID(contextID)
	if !ok {
		return 0
	}
	if priority < MinPriority {
		priority = MinPriority
	}
	if priority > MaxPriority {
		priority = MaxPriority
	}
	return pos.CostCandidates[MaxPriority-priority]
}

// CostToPriority is the inverse of PriorityToCost: it picks the priority
// whose candidate cost is nearest to the stored cost.
func CostToPriority(contextID, cost int) int {
	pos, ok := posByContextID(contextID)
	if !ok {
		return MinPriority
	}
	best := 0
	bestDist := -1
	for i, c := range pos.CostCandidates {
		d := c - cost
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return MaxPriority - best
}
