package problem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"contenttest/internal/bootstrap/config"
	"contenttest/internal/bootstrap/logging"
	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/errs"
	"contenttest/internal/ports"
)

var responseTags = map[string]struct{}{
	"stringresponse":         {},
	"numericalresponse":      {},
	"formularesponse":        {},
	"customresponse":         {},
	"schematicresponse":      {},
	"multiplechoiceresponse": {},
	"truefalseresponse":      {},
	"choiceresponse":         {},
	"optionresponse":         {},
	"symbolicresponse":       {},
	"coderesponse":           {},
	"externalresponse":       {},
	"imageresponse":          {},
	"javascriptresponse":     {},
	"annotationresponse":     {},
	"choicetextresponse":     {},
}

var inputTags = map[string]struct{}{
	"textline":              {},
	"textbox":               {},
	"choicegroup":           {},
	"checkboxgroup":         {},
	"radiogroup":            {},
	"optioninput":           {},
	"formulaequationinput":  {},
	"schematic":             {},
	"imageinput":            {},
	"jsinput":               {},
	"drag_and_drop_input":   {},
	"chemicalequationinput": {},
	"annotationinput":       {},
	"choicetextgroup":       {},
	"crystallography":       {},
	"vsepr_input":           {},
	"editamoleculeinput":    {},
	"designprotein2dinput":  {},
	"editageneinput":        {},
	"javascriptinput":       {},
}

// FileProvider reads problems from <dir>/<location>.xml.
type FileProvider struct {
	dir string
}

var _ ports.ProblemProvider = (*FileProvider)(nil)

func NewFileProvider(cfg config.ProblemsConfig) *FileProvider {
	return &FileProvider{dir: cfg.Dir}
}

func (p *FileProvider) LoadProblem(ctx context.Context, location string) (domain.Problem, error) {
	if ctx == nil {
		return domain.Problem{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return domain.Problem{}, errs.Wrap(err, "check context")
	}

	path, err := p.pathFor(location)
	if err != nil {
		return domain.Problem{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Problem{}, fmt.Errorf("%w: %q", ports.ErrProblemNotFound, location)
		}
		return domain.Problem{}, errs.Wrapf(errs.WithStack(err), "read problem %q", location)
	}

	problem, err := BuildProblem(strings.TrimSpace(location), string(raw))
	if err != nil {
		return domain.Problem{}, errs.Wrapf(err, "build problem %q", location)
	}

	logging.Debug(
		logging.WithAttrs(ctx, slog.String("component", "infrastructure.problem")),
		"problem loaded",
		slog.String("location", problem.Location),
		slog.Int("elements", len(problem.Elements)),
	)
	return problem, nil
}

func (p *FileProvider) pathFor(location string) (string, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return "", domain.ErrLocationRequired
	}

	clean := filepath.Clean(filepath.FromSlash(trimmed))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: location escapes problems dir: %q", ports.ErrProblemNotFound, location)
	}
	return filepath.Join(p.dir, clean+".xml"), nil
}

// BuildProblem parses problem XML and assigns response and input ids in
// document order: responses get <problemID>_<n>, their inputs
// <problemID>_<n>_<k> plus response_id and answer_id attributes.
func BuildProblem(location string, raw string) (domain.Problem, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return domain.Problem{}, errs.Wrap(err, "parse problem xml")
	}
	root := doc.Root()
	if root == nil {
		return domain.Problem{}, domain.ErrEmptyXML
	}

	problemID := ProblemID(location)
	problem := domain.Problem{Location: location}

	for _, response := range collect(root, responseTags) {
		responseIndex := len(problem.Elements) + 1
		responseID := fmt.Sprintf("%s_%d", problemID, responseIndex)
		response.CreateAttr("id", responseID)

		el := domain.Element{ID: responseID, Tree: response}
		for _, input := range collect(response, inputTags) {
			inputIndex := len(el.Inputs) + 1
			inputID := fmt.Sprintf("%s_%d", responseID, inputIndex)
			input.CreateAttr("response_id", fmt.Sprint(responseIndex))
			input.CreateAttr("answer_id", fmt.Sprint(inputIndex))
			input.CreateAttr("id", inputID)
			el.Inputs = append(el.Inputs, domain.InputField{
				ID:            inputID,
				ResponseIndex: responseIndex,
				InputIndex:    inputIndex,
			})
		}
		problem.Elements = append(problem.Elements, el)
	}
	return problem, nil
}

// collect returns descendants of root whose tag is in tags, in document
// order, without descending into a match.
func collect(root *etree.Element, tags map[string]struct{}) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			if _, ok := tags[child.Tag]; ok {
				out = append(out, child)
				continue
			}
			walk(child)
		}
	}
	walk(root)
	return out
}

// ProblemID derives an html-safe id from a location.
func ProblemID(location string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, location)
}
