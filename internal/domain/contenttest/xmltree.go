package contenttest

import (
	"strings"

	"github.com/beevik/etree"
)

// IsIdentifyingAttr reports attributes that carry ids or sizes rather than meaning.
func IsIdentifyingAttr(name string) bool {
	return strings.HasSuffix(name, "id") || name == "size"
}

func anyAttr(string) bool { return true }

// ParseXML parses a serialized snapshot and returns its root element.
func ParseXML(raw string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyXML
	}
	return root, nil
}

// Serialize renders a detached copy of tree.
func Serialize(tree *etree.Element) string {
	if tree == nil {
		return ""
	}

	doc := etree.NewDocument()
	doc.SetRoot(tree.Copy())
	out, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return out
}

// stripAttrs removes matching attributes from tree and all descendants in place.
func stripAttrs(tree *etree.Element, remove func(string) bool) {
	kept := tree.Attr[:0]
	for _, attr := range tree.Attr {
		if remove(attr.Key) {
			continue
		}
		kept = append(kept, attr)
	}
	tree.Attr = kept

	for _, child := range tree.ChildElements() {
		stripAttrs(child, remove)
	}
}

// keepElementsOnly drops every non-element token below tree in place.
func keepElementsOnly(tree *etree.Element) {
	for i := len(tree.Child) - 1; i >= 0; i-- {
		if child, ok := tree.Child[i].(*etree.Element); ok {
			keepElementsOnly(child)
			continue
		}
		tree.RemoveChildAt(i)
	}
}

// stripped returns a copy of tree without the matching attributes.
func stripped(tree *etree.Element, remove func(string) bool) *etree.Element {
	clone := tree.Copy()
	stripAttrs(clone, remove)
	return clone
}
