package contenttest

import (
	"context"
	"strings"

	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/ports"
)

// NotSetAnswer stands in for blank answers in summaries.
const NotSetAnswer = "-- Not Set --"

// ListTests returns stored tests, optionally for one problem. It does not
// re-examine them.
func (s *Service) ListTests(ctx context.Context, location string) ([]TestListItem, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, errRepoRequired
	}

	tests, err := s.repo.ListTests(ctx, ports.ContentTestFilter{Location: strings.TrimSpace(location)})
	if err != nil {
		return nil, err
	}

	items := make([]TestListItem, 0, len(tests))
	for _, test := range tests {
		items = append(items, TestListItem{
			TestRef:   formatTestRef(test.TestID),
			Location:  test.Location,
			ShouldBe:  test.ShouldBe,
			Verdict:   test.Verdict,
			CreatedAt: test.CreatedAt,
			UpdatedAt: test.UpdatedAt,
		})
	}
	return items, nil
}

// GetTest re-examines a test and returns its components and fields.
func (s *Service) GetTest(ctx context.Context, testRef string) (TestDetail, error) {
	test, report, err := s.examinedTest(ctx, testRef)
	if err != nil {
		return TestDetail{}, err
	}

	components, err := s.repo.ListComponents(ctx, test.TestID)
	if err != nil {
		return TestDetail{}, err
	}
	fields, err := s.repo.ListFields(ctx, test.TestID)
	if err != nil {
		return TestDetail{}, err
	}
	fieldsByComponent := make(map[uint64][]FieldItem, len(components))
	for _, field := range fields {
		fieldsByComponent[field.ComponentID] = append(fieldsByComponent[field.ComponentID], FieldItem{
			FieldID:       field.StringID,
			ResponseIndex: field.ResponseIndex,
			InputIndex:    field.InputIndex,
			Answer:        field.Answer,
		})
	}

	detail := TestDetail{
		TestRef:    formatTestRef(test.TestID),
		Location:   test.Location,
		ShouldBe:   test.ShouldBe,
		Verdict:    test.Verdict,
		CreatedAt:  test.CreatedAt,
		UpdatedAt:  test.UpdatedAt,
		Components: make([]ComponentItem, 0, len(components)),
		Rematch:    report,
	}
	for _, component := range components {
		detail.Components = append(detail.Components, ComponentItem{
			ComponentID: component.StringID,
			XML:         component.XML,
			Fields:      fieldsByComponent[component.ComponentID],
		})
	}
	return detail, nil
}

// Summary re-examines a test and lists its answers in problem order.
func (s *Service) Summary(ctx context.Context, testRef string) (TestSummary, error) {
	test, _, err := s.examinedTest(ctx, testRef)
	if err != nil {
		return TestSummary{}, err
	}

	fields, err := s.repo.ListFields(ctx, test.TestID)
	if err != nil {
		return TestSummary{}, err
	}

	summary := TestSummary{
		TestRef:  formatTestRef(test.TestID),
		ShouldBe: test.ShouldBe,
		Verdict:  test.Verdict,
		Answers:  make([]string, 0, len(fields)),
	}
	for _, field := range domain.SortFields(fields) {
		answer := field.Answer
		if answer == "" {
			answer = NotSetAnswer
		}
		summary.Answers = append(summary.Answers, answer)
	}
	return summary, nil
}

// examinedTest re-examines a test and returns its fresh state.
func (s *Service) examinedTest(ctx context.Context, testRef string) (ports.ContentTest, RematchReport, error) {
	if err := checkContext(ctx); err != nil {
		return ports.ContentTest{}, RematchReport{}, err
	}
	if err := s.checkDeps(true); err != nil {
		return ports.ContentTest{}, RematchReport{}, err
	}

	testID, err := parseTestRef(testRef)
	if err != nil {
		return ports.ContentTest{}, RematchReport{}, err
	}
	test, err := s.getTest(ctx, testID)
	if err != nil {
		return ports.ContentTest{}, RematchReport{}, err
	}

	report, err := s.examine(s.passContext(ctx, testID), test, newProblemView(s.provider, test.Location), false)
	if err != nil {
		return ports.ContentTest{}, RematchReport{}, err
	}

	test, err = s.getTest(ctx, testID)
	if err != nil {
		return ports.ContentTest{}, RematchReport{}, err
	}
	return test, report, nil
}
