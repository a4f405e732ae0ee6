package contenttest

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"contenttest/internal/bootstrap/logging"
	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/errs"
	"contenttest/internal/ports"
)

// problemView loads a live problem at most once per pass.
type problemView struct {
	provider ports.ProblemProvider
	location string

	loaded  bool
	problem domain.Problem
	err     error
}

func newProblemView(provider ports.ProblemProvider, location string) *problemView {
	return &problemView{provider: provider, location: location}
}

func (v *problemView) load(ctx context.Context) (domain.Problem, error) {
	if !v.loaded {
		v.problem, v.err = v.provider.LoadProblem(ctx, v.location)
		v.loaded = true
	}
	return v.problem, v.err
}

// Rematch re-examines a test against its live problem and repairs stored
// components when the problem changed.
func (s *Service) Rematch(ctx context.Context, input RematchInput) (RematchReport, error) {
	if err := checkContext(ctx); err != nil {
		return RematchReport{}, err
	}
	if err := s.checkDeps(true); err != nil {
		return RematchReport{}, err
	}

	testID, err := parseTestRef(input.TestRef)
	if err != nil {
		return RematchReport{}, err
	}
	test, err := s.getTest(ctx, testID)
	if err != nil {
		return RematchReport{}, err
	}

	passCtx := s.passContext(ctx, test.TestID)
	return s.examine(passCtx, test, newProblemView(s.provider, test.Location), input.Force)
}

func (s *Service) passContext(ctx context.Context, testID uint64) context.Context {
	ctx = logging.WithAttrs(ctx, slog.String("component", "usecase.contenttest"))
	return logging.WithPass(ctx, uuid.NewString(), formatTestRef(testID))
}

// examine decides between the cheap refresh path and a full reconcile.
// The structure check compares the component count, then each stored
// component against the live element with the same id. A missing id counts
// as a mismatch.
func (s *Service) examine(ctx context.Context, test ports.ContentTest, view *problemView, force bool) (RematchReport, error) {
	problem, err := view.load(ctx)
	if err != nil {
		return RematchReport{}, errs.Wrapf(err, "load problem %q", test.Location)
	}

	report := RematchReport{TestRef: formatTestRef(test.TestID), Path: RematchPathCheck}
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		components, err := s.repo.ListComponents(txCtx, test.TestID)
		if err != nil {
			return err
		}

		if force || structureChanged(components, problem) {
			report.Path = RematchPathReconcile
			return s.reconcile(txCtx, test, components, problem, &report)
		}
		return s.refresh(txCtx, components, problem, &report)
	})
	if err != nil {
		return RematchReport{}, errs.Wrapf(err, "rematch %s", report.TestRef)
	}

	if report.Changed() {
		if report.Path == RematchPathReconcile {
			s.deleteCacheBestEffort(ctx, cacheRunKey(report.TestRef))
		}
		logging.Info(
			ctx,
			"test rematched",
			slog.String("path", string(report.Path)),
			slog.Int("matched", report.Matched),
			slog.Int("renamed", report.Renamed),
			slog.Int("refreshed", report.Refreshed),
			slog.Int("deleted", report.Deleted),
			slog.Int("created", report.Created),
		)
	} else {
		logging.Debug(ctx, "test up to date", slog.String("path", string(report.Path)))
	}
	return report, nil
}

func structureChanged(components []domain.Component, problem domain.Problem) bool {
	if len(components) != len(problem.Elements) {
		return true
	}
	for _, component := range components {
		el, ok := problem.ElementByID(component.StringID)
		if !ok {
			return true
		}
		if domain.StructureHash(el.Tree) != component.StructureHash {
			return true
		}
	}
	return false
}

// refresh updates snapshots whose content drifted without touching structure,
// identifiers or answers.
func (s *Service) refresh(ctx context.Context, components []domain.Component, problem domain.Problem, report *RematchReport) error {
	for _, component := range components {
		el, ok := problem.ElementByID(component.StringID)
		if !ok {
			continue
		}
		report.Matched++

		contentHash := domain.ContentHash(el.Tree)
		if contentHash == component.ContentHash {
			continue
		}
		component.ContentHash = contentHash
		component.XML = domain.Serialize(el.Tree)
		if err := s.repo.UpdateComponent(ctx, component); err != nil {
			return err
		}
		report.Refreshed++
	}
	return nil
}

// reconcile applies a matcher plan. Matched components keep their answers,
// orphans are deleted with their fields, and fresh elements get components
// with empty answers. Any change rebuilds the test's answer mapping and
// resets its verdict.
func (s *Service) reconcile(ctx context.Context, test ports.ContentTest, components []domain.Component, problem domain.Problem, report *RematchReport) error {
	plan := domain.PlanReconcile(components, problem.Elements, s.threshold)

	// only renames re-key fields
	fieldsByComponent := make(map[uint64][]domain.Field, len(components))
	if !plan.Empty() {
		fields, err := s.repo.ListFields(ctx, test.TestID)
		if err != nil {
			return err
		}
		for _, field := range fields {
			fieldsByComponent[field.ComponentID] = append(fieldsByComponent[field.ComponentID], field)
		}
	}
	for _, match := range plan.Matches {
		report.Matched++

		component, rekeyed, result := domain.Rematch(match.Component, fieldsByComponent[match.Component.ComponentID], match.Element)
		switch result {
		case domain.RematchUnchanged:
			continue
		case domain.RematchRefreshed:
			report.Refreshed++
		case domain.RematchRenamed:
			report.Renamed++
			if err := s.repo.UpdateFields(ctx, rekeyed); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateComponent(ctx, component); err != nil {
			return err
		}
	}

	for _, orphan := range plan.Orphans {
		if err := s.repo.DeleteComponent(ctx, orphan.ComponentID); err != nil {
			return err
		}
		report.Deleted++
	}

	for _, el := range plan.Fresh {
		component := domain.NewComponent(test.TestID, el)
		if _, _, err := s.repo.CreateComponent(ctx, component, domain.NewFields(component, el, nil)); err != nil {
			return err
		}
		report.Created++
	}

	if !report.Changed() {
		return nil
	}

	current, err := s.repo.ListFields(ctx, test.TestID)
	if err != nil {
		return err
	}
	test.Answers = domain.AnswersFromFields(current)
	test.Verdict = domain.VerdictNotRun
	test.UpdatedAt = nowUTCString()
	return s.repo.UpdateTest(ctx, test)
}
