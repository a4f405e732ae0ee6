package contenttest

import (
	"context"
	"log/slog"
	"strings"

	"contenttest/internal/bootstrap/logging"
	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/errs"
	"contenttest/internal/ports"
)

// CreateTest snapshots every live element of the problem and stores the
// given answers on the matching input fields.
func (s *Service) CreateTest(ctx context.Context, input CreateTestInput) (string, error) {
	if err := checkContext(ctx); err != nil {
		return "", err
	}
	if err := s.checkDeps(true); err != nil {
		return "", err
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		return "", domain.ErrLocationRequired
	}
	shouldBe, err := domain.ParseExpectation(input.ShouldBe)
	if err != nil {
		return "", err
	}

	problem, err := s.provider.LoadProblem(ctx, location)
	if err != nil {
		return "", errs.Wrapf(err, "load problem %q", location)
	}

	now := nowUTCString()
	var created ports.ContentTest
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.CreateTest(txCtx, ports.ContentTest{
			Location:  location,
			ShouldBe:  shouldBe,
			Verdict:   domain.VerdictNotRun,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}

		var all []domain.Field
		for _, el := range problem.Elements {
			component := domain.NewComponent(created.TestID, el)
			_, fields, err := s.repo.CreateComponent(txCtx, component, domain.NewFields(component, el, input.Answers))
			if err != nil {
				return err
			}
			all = append(all, fields...)
		}

		created.Answers = domain.AnswersFromFields(all)
		return s.repo.UpdateTest(txCtx, created)
	}); err != nil {
		return "", errs.Wrap(err, "create test")
	}

	testRef := formatTestRef(created.TestID)
	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.contenttest")),
		"test created",
		slog.String("test_ref", testRef),
		slog.String("location", location),
		slog.Int("elements", len(problem.Elements)),
	)
	return testRef, nil
}
