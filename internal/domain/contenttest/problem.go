package contenttest

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/cespare/xxhash/v2"
)

// InputField is one answer slot inside a live element.
type InputField struct {
	ID            string
	ResponseIndex int
	InputIndex    int
}

// Element is a live gradable response of a problem.
type Element struct {
	ID     string
	Tree   *etree.Element
	Inputs []InputField
}

// Problem is the live view of a problem definition.
type Problem struct {
	Location string
	Elements []Element
}

func (p Problem) ElementByID(id string) (Element, bool) {
	for _, el := range p.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return Element{}, false
}

// Fingerprint identifies what grading sees of the problem: element ids and
// their content hashes, in document order.
func (p Problem) Fingerprint() string {
	d := xxhash.New()
	for _, el := range p.Elements {
		_, _ = d.WriteString(el.ID)
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(strconv.FormatInt(ContentHash(el.Tree), 16))
		_, _ = d.WriteString(";")
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
