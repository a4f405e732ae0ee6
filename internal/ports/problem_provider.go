package ports

import (
	"context"
	"errors"

	domain "contenttest/internal/domain/contenttest"
)

var (
	ErrProblemNotFound = errors.New("problem not found")
	ErrUngradable      = errors.New("problem cannot be graded")
)

// ProblemProvider returns the live tree of a problem.
type ProblemProvider interface {
	LoadProblem(ctx context.Context, location string) (domain.Problem, error)
}

// Grader grades an answer mapping against a live problem, keyed by input id.
type Grader interface {
	Grade(ctx context.Context, problem domain.Problem, answers map[string]string) (map[string]domain.Correctness, error)
}
