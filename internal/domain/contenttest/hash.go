package contenttest

import (
	"github.com/beevik/etree"
	"github.com/cespare/xxhash/v2"
)

// ContentHash hashes tree with identifying attributes removed. Tags, nesting,
// text and every other attribute value contribute.
func ContentHash(tree *etree.Element) int64 {
	if tree == nil {
		return 0
	}
	return hashString(Serialize(stripped(tree, IsIdentifyingAttr)))
}

// StructureHash hashes the pure shape of tree: tag names and nesting. Text,
// whitespace, comments and attributes do not contribute.
func StructureHash(tree *etree.Element) int64 {
	if tree == nil {
		return 0
	}
	shape := stripped(tree, anyAttr)
	keepElementsOnly(shape)
	return hashString(Serialize(shape))
}

// hashString folds the 64-bit digest into the signed range SQLite stores.
func hashString(s string) int64 {
	return int64(xxhash.Sum64String(s))
}
