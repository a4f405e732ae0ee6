package contenttest

import (
	"context"
	"errors"
	"log/slog"

	"contenttest/internal/bootstrap/config"
	"contenttest/internal/bootstrap/logging"
	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/errs"
	"contenttest/internal/ports"
)

var (
	errRepoRequired     = errors.New("test repository is required")
	errUoWRequired      = errors.New("unit of work is required")
	errProviderRequired = errors.New("problem provider is required")
	errGraderRequired   = errors.New("grader is required")
)

type Service struct {
	repo      ports.TestRepository
	uow       ports.UnitOfWork
	cache     ports.Cache
	provider  ports.ProblemProvider
	grader    ports.Grader
	threshold float64
}

// NewService wires content test usecases. cache may be nil.
func NewService(
	repo ports.TestRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	provider ports.ProblemProvider,
	grader ports.Grader,
	cfg config.ReconcileConfig,
) *Service {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = domain.DefaultThreshold
	}
	return &Service{
		repo:      repo,
		uow:       uow,
		cache:     cache,
		provider:  provider,
		grader:    grader,
		threshold: threshold,
	}
}

type CreateTestInput struct {
	Location string
	ShouldBe string
	// Answers are keyed by input field id. Unknown ids are ignored.
	Answers map[string]string
}

type UpdateAnswersInput struct {
	TestRef string
	Answers map[string]string
}

type UpdateShouldBeInput struct {
	TestRef  string
	ShouldBe string
}

type RematchInput struct {
	TestRef string
	// Force skips the structure check and always reconciles.
	Force bool
}

type RematchPath string

const (
	RematchPathCheck     RematchPath = "check"
	RematchPathReconcile RematchPath = "reconcile"
)

type RematchReport struct {
	TestRef   string
	Path      RematchPath
	Matched   int
	Renamed   int
	Refreshed int
	Deleted   int
	Created   int
}

// Changed reports whether the pass wrote anything.
func (r RematchReport) Changed() bool {
	return r.Renamed+r.Refreshed+r.Deleted+r.Created > 0
}

type RunResult struct {
	TestRef    string
	Verdict    domain.Verdict
	Grades     map[string]domain.Correctness
	GradeError string
	Rematch    RematchReport
}

type TestListItem struct {
	TestRef   string
	Location  string
	ShouldBe  domain.Expectation
	Verdict   domain.Verdict
	CreatedAt string
	UpdatedAt string
}

type FieldItem struct {
	FieldID       string
	ResponseIndex int
	InputIndex    int
	Answer        string
}

type ComponentItem struct {
	ComponentID string
	XML         string
	Fields      []FieldItem
}

type TestDetail struct {
	TestRef    string
	Location   string
	ShouldBe   domain.Expectation
	Verdict    domain.Verdict
	CreatedAt  string
	UpdatedAt  string
	Components []ComponentItem
	Rematch    RematchReport
}

type TestSummary struct {
	TestRef  string
	ShouldBe domain.Expectation
	Verdict  domain.Verdict
	// Answers are ordered by response then input index.
	Answers []string
}

func (s *Service) checkDeps(needProvider bool) error {
	if s.repo == nil {
		return errRepoRequired
	}
	if s.uow == nil {
		return errUoWRequired
	}
	if needProvider && s.provider == nil {
		return errProviderRequired
	}
	return nil
}

func (s *Service) getCacheBestEffort(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.Debug(ctx, "cache read failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		return "", false
	}
	return value, found
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value, 0)
}

func (s *Service) deleteCacheBestEffort(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, key)
}
