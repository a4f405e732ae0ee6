package contenttest

import (
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DefaultThreshold is the lowest score the reconciler accepts as a match.
	DefaultThreshold = 0.92

	locationScale    = 1.01
	locationExponent = 1.2
)

// Closeness scores how well a stored component matches a live element.
// 0 means the shapes differ, 1 means identical attributes, and up to 1.01
// for an identical element still under the same identifier.
func Closeness(c Component, el Element) float64 {
	if el.Tree == nil || StructureHash(el.Tree) != c.StructureHash {
		return 0
	}

	stored, err := ParseXML(c.XML)
	if err != nil {
		return 0
	}

	ratio := SimilarityRatio(
		Condense(CondenseAttributes(stored)),
		Condense(CondenseAttributes(el.Tree)),
	)

	if c.StringID == el.ID {
		ratio = LocationBonus(ratio)
	}
	return ratio
}

// SimilarityRatio is the sequence-matcher ratio 2*M/T over the characters of a and b.
func SimilarityRatio(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

// LocationBonus lifts a ratio for an element that kept its identifier.
func LocationBonus(ratio float64) float64 {
	return locationScale * (1 - math.Pow(1-ratio, locationExponent))
}

func splitChars(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}
