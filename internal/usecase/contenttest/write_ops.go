package contenttest

import (
	"context"

	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/errs"
)

// UpdateAnswers replaces every answer of a test. Fields missing from the
// mapping are cleared; ids that match no field are ignored.
func (s *Service) UpdateAnswers(ctx context.Context, input UpdateAnswersInput) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := s.checkDeps(true); err != nil {
		return err
	}

	testID, err := parseTestRef(input.TestRef)
	if err != nil {
		return err
	}
	test, err := s.getTest(ctx, testID)
	if err != nil {
		return err
	}

	passCtx := s.passContext(ctx, testID)
	if _, err := s.examine(passCtx, test, newProblemView(s.provider, test.Location), false); err != nil {
		return err
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		test, err := s.getTest(txCtx, testID)
		if err != nil {
			return err
		}
		fields, err := s.repo.ListFields(txCtx, testID)
		if err != nil {
			return err
		}
		for i := range fields {
			fields[i].Answer = input.Answers[fields[i].StringID]
		}
		if err := s.repo.UpdateFields(txCtx, fields); err != nil {
			return err
		}

		test.Answers = domain.AnswersFromFields(fields)
		test.Verdict = domain.VerdictNotRun
		test.UpdatedAt = nowUTCString()
		return s.repo.UpdateTest(txCtx, test)
	}); err != nil {
		return errs.Wrapf(err, "update answers of %s", formatTestRef(testID))
	}

	s.deleteCacheBestEffort(ctx, cacheRunKey(formatTestRef(testID)))
	return nil
}

// UpdateShouldBe changes the expected outcome and clears the verdict.
func (s *Service) UpdateShouldBe(ctx context.Context, input UpdateShouldBeInput) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := s.checkDeps(false); err != nil {
		return err
	}

	testID, err := parseTestRef(input.TestRef)
	if err != nil {
		return err
	}
	shouldBe, err := domain.ParseExpectation(input.ShouldBe)
	if err != nil {
		return err
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		test, err := s.getTest(txCtx, testID)
		if err != nil {
			return err
		}
		test.ShouldBe = shouldBe
		test.Verdict = domain.VerdictNotRun
		test.UpdatedAt = nowUTCString()
		return s.repo.UpdateTest(txCtx, test)
	}); err != nil {
		return errs.Wrapf(err, "update expected outcome of %s", formatTestRef(testID))
	}

	s.deleteCacheBestEffort(ctx, cacheRunKey(formatTestRef(testID)))
	return nil
}

// DeleteTest removes a test with its components and fields.
func (s *Service) DeleteTest(ctx context.Context, testRef string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := s.checkDeps(false); err != nil {
		return err
	}

	testID, err := parseTestRef(testRef)
	if err != nil {
		return err
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.getTest(txCtx, testID); err != nil {
			return err
		}
		return s.repo.DeleteTest(txCtx, testID)
	}); err != nil {
		return errs.Wrapf(err, "delete %s", formatTestRef(testID))
	}

	s.deleteCacheBestEffort(ctx, cacheRunKey(formatTestRef(testID)))
	return nil
}
