package problem

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/errs"
	"contenttest/internal/ports"
)

// XMLGrader grades the response types whose answer key lives in the problem
// XML itself. Anything else is reported as ungradable.
type XMLGrader struct{}

var _ ports.Grader = XMLGrader{}

func NewXMLGrader() XMLGrader {
	return XMLGrader{}
}

func (XMLGrader) Grade(ctx context.Context, problem domain.Problem, answers map[string]string) (map[string]domain.Correctness, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	grades := make(map[string]domain.Correctness, len(answers))
	for _, el := range problem.Elements {
		if err := gradeElement(el, answers, grades); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ports.ErrUngradable, el.ID, err)
		}
	}
	return grades, nil
}

func gradeElement(el domain.Element, answers map[string]string, grades map[string]domain.Correctness) error {
	switch el.Tree.Tag {
	case "stringresponse":
		return gradeString(el, answers, grades)
	case "numericalresponse":
		return gradeNumerical(el, answers, grades)
	case "multiplechoiceresponse", "truefalseresponse":
		return gradeSingleChoice(el, answers, grades)
	case "choiceresponse":
		return gradeCheckbox(el, answers, grades)
	case "optionresponse":
		return gradeOption(el, answers, grades)
	default:
		return fmt.Errorf("unsupported response type %q", el.Tree.Tag)
	}
}

func gradeString(el domain.Element, answers map[string]string, grades map[string]domain.Correctness) error {
	accepted := []string{el.Tree.SelectAttrValue("answer", "")}
	for _, extra := range el.Tree.SelectElements("additional_answer") {
		accepted = append(accepted, extra.SelectAttrValue("answer", ""))
	}
	caseInsensitive := strings.Contains(strings.ToLower(el.Tree.SelectAttrValue("type", "")), "ci")

	for _, input := range el.Inputs {
		given := strings.TrimSpace(answers[input.ID])
		grades[input.ID] = domain.Incorrect
		for _, want := range accepted {
			want = strings.TrimSpace(want)
			if given == want || (caseInsensitive && strings.EqualFold(given, want)) {
				grades[input.ID] = domain.Correct
				break
			}
		}
	}
	return nil
}

func gradeNumerical(el domain.Element, answers map[string]string, grades map[string]domain.Correctness) error {
	expected, err := strconv.ParseFloat(strings.TrimSpace(el.Tree.SelectAttrValue("answer", "")), 64)
	if err != nil {
		return fmt.Errorf("invalid numerical answer key: %w", err)
	}
	tolerance, err := parseTolerance(el.Tree, expected)
	if err != nil {
		return err
	}

	for _, input := range el.Inputs {
		given := strings.TrimSpace(answers[input.ID])
		if given == "" {
			grades[input.ID] = domain.Incorrect
			continue
		}
		value, err := strconv.ParseFloat(given, 64)
		if err != nil {
			return fmt.Errorf("could not interpret %q as a number", given)
		}
		if math.Abs(value-expected) <= tolerance {
			grades[input.ID] = domain.Correct
		} else {
			grades[input.ID] = domain.Incorrect
		}
	}
	return nil
}

// parseTolerance reads <responseparam type="tolerance" default="..."/>,
// either absolute or a percentage of the expected value.
func parseTolerance(response *etree.Element, expected float64) (float64, error) {
	const exact = 1e-9

	for _, param := range response.SelectElements("responseparam") {
		if param.SelectAttrValue("type", "") != "tolerance" {
			continue
		}
		raw := strings.TrimSpace(param.SelectAttrValue("default", ""))
		if raw == "" {
			return exact, nil
		}
		if pct, ok := strings.CutSuffix(raw, "%"); ok {
			value, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid tolerance %q", raw)
			}
			return math.Abs(expected) * value / 100, nil
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid tolerance %q", raw)
		}
		return math.Abs(value), nil
	}
	return exact, nil
}

// correctChoices returns the names of the correct choices of a group.
// Unnamed choices are called choice_<index> like capa does.
func correctChoices(group *etree.Element) map[string]struct{} {
	correct := make(map[string]struct{})
	for i, choice := range group.SelectElements("choice") {
		name := choice.SelectAttrValue("name", fmt.Sprintf("choice_%d", i))
		if strings.EqualFold(choice.SelectAttrValue("correct", ""), "true") {
			correct[name] = struct{}{}
		}
	}
	return correct
}

func choiceGroupFor(el domain.Element, inputID string) *etree.Element {
	for _, group := range el.Tree.FindElements(".//*[@id='" + inputID + "']") {
		return group
	}
	return nil
}

func gradeSingleChoice(el domain.Element, answers map[string]string, grades map[string]domain.Correctness) error {
	for _, input := range el.Inputs {
		group := choiceGroupFor(el, input.ID)
		if group == nil {
			return fmt.Errorf("input %s not found", input.ID)
		}
		correct := correctChoices(group)
		if _, ok := correct[strings.TrimSpace(answers[input.ID])]; ok {
			grades[input.ID] = domain.Correct
		} else {
			grades[input.ID] = domain.Incorrect
		}
	}
	return nil
}

func gradeCheckbox(el domain.Element, answers map[string]string, grades map[string]domain.Correctness) error {
	for _, input := range el.Inputs {
		group := choiceGroupFor(el, input.ID)
		if group == nil {
			return fmt.Errorf("input %s not found", input.ID)
		}
		correct := correctChoices(group)

		selected := splitSelection(answers[input.ID])
		want := make([]string, 0, len(correct))
		for name := range correct {
			want = append(want, name)
		}
		sort.Strings(want)

		if strings.Join(selected, ",") == strings.Join(want, ",") {
			grades[input.ID] = domain.Correct
		} else {
			grades[input.ID] = domain.Incorrect
		}
	}
	return nil
}

func splitSelection(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	sort.Strings(out)
	return out
}

func gradeOption(el domain.Element, answers map[string]string, grades map[string]domain.Correctness) error {
	for _, input := range el.Inputs {
		option := choiceGroupFor(el, input.ID)
		if option == nil {
			return fmt.Errorf("input %s not found", input.ID)
		}
		want := strings.TrimSpace(option.SelectAttrValue("correct", ""))
		if strings.TrimSpace(answers[input.ID]) == want {
			grades[input.ID] = domain.Correct
		} else {
			grades[input.ID] = domain.Incorrect
		}
	}
	return nil
}
