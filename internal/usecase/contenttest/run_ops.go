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

// RunTest re-examines a test, grades its stored answers and records the verdict.
func (s *Service) RunTest(ctx context.Context, testRef string) (RunResult, error) {
	if err := checkContext(ctx); err != nil {
		return RunResult{}, err
	}
	if err := s.checkDeps(true); err != nil {
		return RunResult{}, err
	}
	if s.grader == nil {
		return RunResult{}, errGraderRequired
	}

	testID, err := parseTestRef(testRef)
	if err != nil {
		return RunResult{}, err
	}
	test, err := s.getTest(ctx, testID)
	if err != nil {
		return RunResult{}, err
	}

	return s.runTest(s.passContext(ctx, testID), test, newProblemView(s.provider, test.Location))
}

// RunAll runs every test of a problem, loading the problem once.
func (s *Service) RunAll(ctx context.Context, location string) ([]RunResult, error) {
	return s.runLocation(ctx, location, false)
}

// RunStale runs the tests of a problem whose last verdict was computed
// against different problem content. Tests that never ran are always run.
func (s *Service) RunStale(ctx context.Context, location string) ([]RunResult, error) {
	return s.runLocation(ctx, location, true)
}

func (s *Service) runLocation(ctx context.Context, location string, staleOnly bool) ([]RunResult, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if err := s.checkDeps(true); err != nil {
		return nil, err
	}
	if s.grader == nil {
		return nil, errGraderRequired
	}

	location = strings.TrimSpace(location)
	if location == "" {
		return nil, domain.ErrLocationRequired
	}

	tests, err := s.repo.ListTests(ctx, ports.ContentTestFilter{Location: location})
	if err != nil {
		return nil, err
	}

	view := newProblemView(s.provider, location)
	fingerprint := ""
	if staleOnly && len(tests) > 0 {
		problem, err := view.load(ctx)
		if err != nil {
			return nil, errs.Wrapf(err, "load problem %q", location)
		}
		fingerprint = problem.Fingerprint()
	}

	results := make([]RunResult, 0, len(tests))
	for _, test := range tests {
		if staleOnly && s.upToDate(ctx, test, fingerprint) {
			logging.Debug(ctx, "test skipped, problem unchanged since last run", slog.String("test_ref", formatTestRef(test.TestID)))
			continue
		}
		result, err := s.runTest(s.passContext(ctx, test.TestID), test, view)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Service) upToDate(ctx context.Context, test ports.ContentTest, fingerprint string) bool {
	if test.Verdict == domain.VerdictNotRun {
		return false
	}
	last, found := s.getCacheBestEffort(ctx, cacheRunKey(formatTestRef(test.TestID)))
	return found && last == fingerprint
}

func (s *Service) runTest(ctx context.Context, test ports.ContentTest, view *problemView) (RunResult, error) {
	report, err := s.examine(ctx, test, view, false)
	if err != nil {
		return RunResult{}, err
	}

	// examine may have rebuilt the answers
	test, err = s.getTest(ctx, test.TestID)
	if err != nil {
		return RunResult{}, err
	}
	problem, err := view.load(ctx)
	if err != nil {
		return RunResult{}, errs.Wrapf(err, "load problem %q", test.Location)
	}

	result := RunResult{TestRef: formatTestRef(test.TestID), Rematch: report}
	grades, gradeErr := s.grader.Grade(ctx, problem, test.Answers)
	if gradeErr != nil {
		if err := ctx.Err(); err != nil {
			return RunResult{}, errs.Wrap(err, "grade")
		}
		logging.Warn(ctx, "grading failed", slog.Any("err", errs.Loggable(gradeErr)))
		result.GradeError = gradeErr.Error()
	}
	result.Grades = grades
	result.Verdict = domain.DecideVerdict(test.ShouldBe, grades, gradeErr, test.Answers)

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		test.Verdict = result.Verdict
		test.UpdatedAt = nowUTCString()
		return s.repo.UpdateTest(txCtx, test)
	}); err != nil {
		return RunResult{}, errs.Wrapf(err, "record verdict of %s", result.TestRef)
	}

	s.setCacheBestEffort(ctx, cacheRunKey(result.TestRef), problem.Fingerprint())
	logging.Info(
		ctx,
		"test run",
		slog.String("should_be", string(test.ShouldBe)),
		slog.String("verdict", string(result.Verdict)),
	)
	return result, nil
}
