package contenttest

import (
	"fmt"
	"testing"
)

func mustParse(t *testing.T, raw string) Element {
	t.Helper()

	tree, err := ParseXML(raw)
	if err != nil {
		t.Fatalf("ParseXML(%q) error = %v", raw, err)
	}
	return Element{ID: tree.SelectAttrValue("id", ""), Tree: tree}
}

// stringResponse builds a one-input stringresponse element under id.
func stringResponse(t *testing.T, id string, responseIndex int, answer string) Element {
	t.Helper()

	inputID := fmt.Sprintf("%s_1", id)
	raw := fmt.Sprintf(
		`<stringresponse id="%s" answer="%s"><textline id="%s" size="20" response_id="%d" answer_id="1"/></stringresponse>`,
		id, answer, inputID, responseIndex,
	)
	el := mustParse(t, raw)
	el.Inputs = []InputField{{ID: inputID, ResponseIndex: responseIndex, InputIndex: 1}}
	return el
}
