package contenttest

import "sort"

// Component is the stored snapshot of one live element.
type Component struct {
	ComponentID   uint64
	TestID        uint64
	StringID      string
	ContentHash   int64
	StructureHash int64
	XML           string
}

// Field is the stored answer for one input of a component.
type Field struct {
	FieldID       uint64
	ComponentID   uint64
	TestID        uint64
	StringID      string
	ResponseIndex int
	InputIndex    int
	Answer        string
}

type RematchResult int

const (
	RematchUnchanged RematchResult = iota
	// RematchRefreshed means only the snapshot and content hash changed.
	RematchRefreshed
	// RematchRenamed means the component and its fields took new identifiers.
	RematchRenamed
)

func (r RematchResult) String() string {
	switch r {
	case RematchRefreshed:
		return "refreshed"
	case RematchRenamed:
		return "renamed"
	default:
		return "unchanged"
	}
}

// NewComponent snapshots a live element for testID.
func NewComponent(testID uint64, el Element) Component {
	return Component{
		TestID:        testID,
		StringID:      el.ID,
		ContentHash:   ContentHash(el.Tree),
		StructureHash: StructureHash(el.Tree),
		XML:           Serialize(el.Tree),
	}
}

// NewFields builds the fields of a fresh component, taking answers by input id.
func NewFields(c Component, el Element, answers map[string]string) []Field {
	fields := make([]Field, 0, len(el.Inputs))
	for _, input := range el.Inputs {
		fields = append(fields, Field{
			ComponentID:   c.ComponentID,
			TestID:        c.TestID,
			StringID:      input.ID,
			ResponseIndex: input.ResponseIndex,
			InputIndex:    input.InputIndex,
			Answer:        answers[input.ID],
		})
	}
	return fields
}

// Rematch points c at el. Structure hashes are assumed equal. Fields are only
// touched when the identifier changes; they are re-keyed in input order and
// keep their answers.
func Rematch(c Component, fields []Field, el Element) (Component, []Field, RematchResult) {
	contentHash := ContentHash(el.Tree)

	if c.StringID == el.ID {
		if c.ContentHash == contentHash {
			return c, fields, RematchUnchanged
		}
		c.XML = Serialize(el.Tree)
		c.ContentHash = contentHash
		return c, fields, RematchRefreshed
	}

	c.StringID = el.ID
	if c.ContentHash != contentHash {
		c.XML = Serialize(el.Tree)
		c.ContentHash = contentHash
	}

	ordered := SortFields(fields)
	for i := range ordered {
		if i >= len(el.Inputs) {
			break
		}
		ordered[i].StringID = el.Inputs[i].ID
		ordered[i].ResponseIndex = el.Inputs[i].ResponseIndex
		ordered[i].InputIndex = el.Inputs[i].InputIndex
	}
	return c, ordered, RematchRenamed
}

// SortFields returns a copy ordered by response index, input index, then id.
func SortFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ResponseIndex != out[j].ResponseIndex {
			return out[i].ResponseIndex < out[j].ResponseIndex
		}
		if out[i].InputIndex != out[j].InputIndex {
			return out[i].InputIndex < out[j].InputIndex
		}
		return out[i].FieldID < out[j].FieldID
	})
	return out
}

// AnswersFromFields rebuilds the answer mapping of a test.
func AnswersFromFields(fields []Field) map[string]string {
	answers := make(map[string]string, len(fields))
	for _, field := range fields {
		answers[field.StringID] = field.Answer
	}
	return answers
}
