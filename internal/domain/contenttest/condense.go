package contenttest

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// CondenseAttributes flattens the meaningful attributes of tree and its
// descendants into one mapping. Later elements in document order win on
// key collisions.
func CondenseAttributes(tree *etree.Element) map[string]string {
	out := make(map[string]string)
	if tree == nil {
		return out
	}
	collectAttrs(stripped(tree, IsIdentifyingAttr), out)
	return out
}

func collectAttrs(tree *etree.Element, out map[string]string) {
	for _, attr := range tree.Attr {
		out[attr.Key] = attr.Value
	}
	for _, child := range tree.ChildElements() {
		collectAttrs(child, out)
	}
}

// Condense joins keys and values in sorted key order without separators.
// The result is lossy and only meant for similarity scoring.
func Condense(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(attrs[key])
	}
	return b.String()
}
