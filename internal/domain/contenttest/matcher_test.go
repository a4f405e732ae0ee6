package contenttest

import "testing"

func TestPlanReconcileSwapsReorderedElements(t *testing.T) {
	elA := stringResponse(t, "A", 1, "cat")
	elB := stringResponse(t, "B", 2, "elephant")
	compA := NewComponent(1, elA)
	compA.ComponentID = 10
	compB := NewComponent(1, elB)
	compB.ComponentID = 11

	// problem edited: the two responses changed places
	liveA := stringResponse(t, "A", 1, "elephant")
	liveB := stringResponse(t, "B", 2, "cat")

	plan := PlanReconcile([]Component{compA, compB}, []Element{liveA, liveB}, DefaultThreshold)
	if len(plan.Orphans) != 0 || len(plan.Fresh) != 0 {
		t.Fatalf("plan orphans=%d fresh=%d, want 0/0", len(plan.Orphans), len(plan.Fresh))
	}
	if len(plan.Matches) != 2 {
		t.Fatalf("plan matches = %d", len(plan.Matches))
	}

	pairs := map[uint64]string{}
	for _, m := range plan.Matches {
		pairs[m.Component.ComponentID] = m.Element.ID
	}
	if pairs[10] != "B" || pairs[11] != "A" {
		t.Fatalf("pairs = %#v, want 10->B 11->A", pairs)
	}
	if plan.Empty() {
		t.Fatalf("plan with renames reported empty")
	}
}

func TestPlanReconcileShapeChangeReplacesComponent(t *testing.T) {
	comp := NewComponent(1, stringResponse(t, "A", 1, "cat"))
	wrapped := mustParse(t, `<stringresponse id="A" answer="cat"><div><textline id="A_1"/></div></stringresponse>`)

	plan := PlanReconcile([]Component{comp}, []Element{wrapped}, DefaultThreshold)
	if len(plan.Matches) != 0 {
		t.Fatalf("plan matches = %d, want 0", len(plan.Matches))
	}
	if len(plan.Orphans) != 1 || len(plan.Fresh) != 1 {
		t.Fatalf("plan orphans=%d fresh=%d, want 1/1", len(plan.Orphans), len(plan.Fresh))
	}
}

func TestPlanReconcileIdempotent(t *testing.T) {
	elA := stringResponse(t, "A", 1, "cat")
	elB := stringResponse(t, "B", 2, "dog")
	comps := []Component{NewComponent(1, elA), NewComponent(1, elB)}

	plan := PlanReconcile(comps, []Element{elA, elB}, DefaultThreshold)
	if !plan.Empty() {
		t.Fatalf("plan over unchanged problem should be empty: %+v", plan)
	}
}

func TestPlanReconcileStopsBelowThreshold(t *testing.T) {
	comps := []Component{{ComponentID: 1, StringID: "c1"}, {ComponentID: 2, StringID: "c2"}}
	els := []Element{{ID: "e1"}, {ID: "e2"}}

	scores := map[string]float64{
		"c1|e1": 0.95,
		"c2|e2": 0.91,
		"c2|e1": 0.5,
		"c1|e2": 0.4,
	}
	score := func(c Component, el Element) float64 { return scores[c.StringID+"|"+el.ID] }

	plan := PlanReconcileWith(score, comps, els, DefaultThreshold)
	if len(plan.Matches) != 1 || plan.Matches[0].Component.StringID != "c1" {
		t.Fatalf("plan matches = %+v", plan.Matches)
	}
	if len(plan.Orphans) != 1 || plan.Orphans[0].StringID != "c2" {
		t.Fatalf("plan orphans = %+v", plan.Orphans)
	}
	if len(plan.Fresh) != 1 || plan.Fresh[0].ID != "e2" {
		t.Fatalf("plan fresh = %+v", plan.Fresh)
	}
}

func TestPlanReconcileGreedySkipsConsumed(t *testing.T) {
	comps := []Component{{ComponentID: 1, StringID: "c1"}, {ComponentID: 2, StringID: "c2"}}
	els := []Element{{ID: "e1"}, {ID: "e2"}}

	// c1 takes e1 first even though c1|e2 + c2|e1 would score higher overall
	scores := map[string]float64{
		"c1|e1": 1.0,
		"c1|e2": 0.99,
		"c2|e1": 0.99,
		"c2|e2": 0.93,
	}
	score := func(c Component, el Element) float64 { return scores[c.StringID+"|"+el.ID] }

	plan := PlanReconcileWith(score, comps, els, DefaultThreshold)
	if len(plan.Matches) != 2 {
		t.Fatalf("plan matches = %+v", plan.Matches)
	}
	if plan.Matches[0].Component.StringID != "c1" || plan.Matches[0].Element.ID != "e1" {
		t.Fatalf("first match = %+v", plan.Matches[0])
	}
	if plan.Matches[1].Component.StringID != "c2" || plan.Matches[1].Element.ID != "e2" {
		t.Fatalf("second match = %+v", plan.Matches[1])
	}
}

func TestPlanReconcileTieBreakIsDeterministic(t *testing.T) {
	comps := []Component{
		{ComponentID: 7, StringID: "z"},
		{ComponentID: 3, StringID: "a"},
	}
	els := []Element{{ID: "y"}, {ID: "x"}}
	flat := func(Component, Element) float64 { return 1 }

	for i := 0; i < 5; i++ {
		plan := PlanReconcileWith(flat, comps, els, DefaultThreshold)
		if len(plan.Matches) != 2 {
			t.Fatalf("plan matches = %+v", plan.Matches)
		}
		// element x sorts first and takes component a; y gets z
		if plan.Matches[0].Element.ID != "x" || plan.Matches[0].Component.StringID != "a" {
			t.Fatalf("first match = %+v", plan.Matches[0])
		}
		if plan.Matches[1].Element.ID != "y" || plan.Matches[1].Component.StringID != "z" {
			t.Fatalf("second match = %+v", plan.Matches[1])
		}
	}
}

func TestPlanReconcileEmptyInputs(t *testing.T) {
	plan := PlanReconcile(nil, []Element{{ID: "e1"}}, DefaultThreshold)
	if len(plan.Fresh) != 1 || len(plan.Matches) != 0 || len(plan.Orphans) != 0 {
		t.Fatalf("plan = %+v", plan)
	}

	plan = PlanReconcile([]Component{{StringID: "c1"}}, nil, DefaultThreshold)
	if len(plan.Orphans) != 1 || len(plan.Fresh) != 0 {
		t.Fatalf("plan = %+v", plan)
	}
}
