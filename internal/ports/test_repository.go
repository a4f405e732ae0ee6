package ports

import (
	"context"
	"errors"

	domain "contenttest/internal/domain/contenttest"
)

var ErrTestNotFound = errors.New("content test not found")

type ContentTest struct {
	TestID    uint64
	Location  string
	ShouldBe  domain.Expectation
	Verdict   domain.Verdict
	Answers   map[string]string
	CreatedAt string
	UpdatedAt string
}

type ContentTestFilter struct {
	Location string
}

type TestReadRepository interface {
	ListTests(ctx context.Context, filter ContentTestFilter) ([]ContentTest, error)
	GetTest(ctx context.Context, testID uint64) (ContentTest, error)
	ListComponents(ctx context.Context, testID uint64) ([]domain.Component, error)
	ListFields(ctx context.Context, testID uint64) ([]domain.Field, error)
}

type TestRepository interface {
	TestReadRepository
	CreateTest(ctx context.Context, test ContentTest) (ContentTest, error)
	UpdateTest(ctx context.Context, test ContentTest) error
	DeleteTest(ctx context.Context, testID uint64) error
	// CreateComponent inserts the component and its fields, filling in ids.
	CreateComponent(ctx context.Context, component domain.Component, fields []domain.Field) (domain.Component, []domain.Field, error)
	UpdateComponent(ctx context.Context, component domain.Component) error
	// DeleteComponent removes the component and its fields.
	DeleteComponent(ctx context.Context, componentID uint64) error
	UpdateFields(ctx context.Context, fields []domain.Field) error
}
