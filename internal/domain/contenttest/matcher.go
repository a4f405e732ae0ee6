package contenttest

import (
	"cmp"
	"slices"
)

// ScoreFunc scores a stored component against a live element.
type ScoreFunc func(Component, Element) float64

// Match pairs a stored component with the live element it now tracks.
type Match struct {
	Component Component
	Element   Element
	Score     float64
}

// Plan is the full outcome of one reconciliation, decided before any write.
type Plan struct {
	Matches []Match
	// Orphans have no live counterpart and are deleted.
	Orphans []Component
	// Fresh elements have no stored component and get a new one with empty answers.
	Fresh []Element
}

// Empty reports a plan that keeps every component where it is.
func (p Plan) Empty() bool {
	if len(p.Orphans) > 0 || len(p.Fresh) > 0 {
		return false
	}
	for _, m := range p.Matches {
		if m.Component.StringID != m.Element.ID {
			return false
		}
	}
	return true
}

type candidate struct {
	component int
	element   int
	score     float64
}

// PlanReconcile greedily pairs components with elements by Closeness.
func PlanReconcile(components []Component, elements []Element, threshold float64) Plan {
	return PlanReconcileWith(Closeness, components, elements, threshold)
}

// PlanReconcileWith pairs components with elements, best score first, and
// stops at the first score below threshold. Each side is consumed at most
// once; there is no backtracking.
//
// Equal scores are ordered by element id, then component id, then component
// primary key, all ascending.
func PlanReconcileWith(score ScoreFunc, components []Component, elements []Element, threshold float64) Plan {
	candidates := make([]candidate, 0, len(components)*len(elements))
	for ci, c := range components {
		for ei, el := range elements {
			candidates = append(candidates, candidate{
				component: ci,
				element:   ei,
				score:     score(c, el),
			})
		}
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		if byScore := cmp.Compare(b.score, a.score); byScore != 0 {
			return byScore
		}
		if byElement := cmp.Compare(elements[a.element].ID, elements[b.element].ID); byElement != 0 {
			return byElement
		}
		ca, cb := components[a.component], components[b.component]
		if byID := cmp.Compare(ca.StringID, cb.StringID); byID != 0 {
			return byID
		}
		return cmp.Compare(ca.ComponentID, cb.ComponentID)
	})

	usedComponents := make([]bool, len(components))
	usedElements := make([]bool, len(elements))

	var plan Plan
	for _, cand := range candidates {
		if cand.score < threshold {
			break
		}
		if usedComponents[cand.component] || usedElements[cand.element] {
			continue
		}
		usedComponents[cand.component] = true
		usedElements[cand.element] = true
		plan.Matches = append(plan.Matches, Match{
			Component: components[cand.component],
			Element:   elements[cand.element],
			Score:     cand.score,
		})
	}

	for ci, used := range usedComponents {
		if !used {
			plan.Orphans = append(plan.Orphans, components[ci])
		}
	}
	for ei, used := range usedElements {
		if !used {
			plan.Fresh = append(plan.Fresh, elements[ei])
		}
	}
	return plan
}
