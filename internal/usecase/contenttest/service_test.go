package contenttest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"contenttest/internal/bootstrap/config"
	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "contenttest/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "contenttest/internal/infrastructure/persistence/sqlite/uow"
	probleminfra "contenttest/internal/infrastructure/problem"
	"contenttest/internal/ports"
)

const location = "demo/p"

const (
	stringThenNumber = `<problem>
  <stringresponse answer="cat" type="ci"><textline size="10"/></stringresponse>
  <numericalresponse answer="42"><formulaequationinput/></numericalresponse>
</problem>`

	numberThenString = `<problem>
  <numericalresponse answer="42"><formulaequationinput/></numericalresponse>
  <stringresponse answer="cat" type="ci"><textline size="10"/></stringresponse>
</problem>`

	catThenElephant = `<problem>
  <stringresponse answer="cat"><textline/></stringresponse>
  <stringresponse answer="elephant"><textline/></stringresponse>
</problem>`

	elephantThenCat = `<problem>
  <stringresponse answer="elephant"><textline/></stringresponse>
  <stringresponse answer="cat"><textline/></stringresponse>
</problem>`

	capitalQuestion = `<problem>
  <multiplechoiceresponse><choicegroup type="MultipleChoice"><choice correct="true">Paris</choice><choice correct="false">Lyon</choice></choicegroup></multiplechoiceresponse>
  <stringresponse answer="cat"><textline/></stringresponse>
</problem>`
)

type testCache struct {
	data map[string]string
}

func newTestCache() *testCache {
	return &testCache{data: make(map[string]string)}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

// fakeProvider serves problems from memory and counts loads.
type fakeProvider struct {
	problems map[string]string
	loads    int
}

func (p *fakeProvider) LoadProblem(_ context.Context, location string) (domain.Problem, error) {
	p.loads++
	raw, ok := p.problems[location]
	if !ok {
		return domain.Problem{}, ports.ErrProblemNotFound
	}
	return probleminfra.BuildProblem(location, raw)
}

type failingGrader struct{}

func (failingGrader) Grade(context.Context, domain.Problem, map[string]string) (map[string]domain.Correctness, error) {
	return nil, ports.ErrUngradable
}

type fixture struct {
	svc      *Service
	repo     *sqliterepo.TestRepository
	cache    *testCache
	provider *fakeProvider
}

func setupFixture(t *testing.T, grader ports.Grader) fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "contenttest.sqlite") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	if grader == nil {
		grader = probleminfra.NewXMLGrader()
	}
	repo := sqliterepo.NewTestRepository(db)
	cache := newTestCache()
	provider := &fakeProvider{problems: map[string]string{location: stringThenNumber}}
	svc := NewService(repo, sqliteuow.NewUnitOfWork(db), cache, provider, grader, config.ReconcileConfig{Threshold: domain.DefaultThreshold})
	return fixture{svc: svc, repo: repo, cache: cache, provider: provider}
}

func (f fixture) create(t *testing.T, shouldBe string, answers map[string]string) string {
	t.Helper()

	ref, err := f.svc.CreateTest(context.Background(), CreateTestInput{
		Location: location,
		ShouldBe: shouldBe,
		Answers:  answers,
	})
	if err != nil {
		t.Fatalf("CreateTest() error = %v", err)
	}
	return ref
}

func (f fixture) stored(t *testing.T, ref string) ports.ContentTest {
	t.Helper()

	testID, err := domain.ParseTestRef(ref)
	if err != nil {
		t.Fatalf("ParseTestRef(%q) error = %v", ref, err)
	}
	test, err := f.repo.GetTest(context.Background(), testID)
	if err != nil {
		t.Fatalf("GetTest() error = %v", err)
	}
	return test
}

func TestCreateTestSnapshotsElements(t *testing.T) {
	f := setupFixture(t, nil)
	ref := f.create(t, "correct", map[string]string{"demo_p_1_1": "cat", "unknown": "x"})

	if ref != "test#1" {
		t.Fatalf("ref = %q", ref)
	}
	test := f.stored(t, ref)
	if test.Verdict != domain.VerdictNotRun || test.ShouldBe != domain.ShouldBeCorrect {
		t.Fatalf("stored test = %+v", test)
	}
	if len(test.Answers) != 2 || test.Answers["demo_p_1_1"] != "cat" || test.Answers["demo_p_2_1"] != "" {
		t.Fatalf("answers = %#v", test.Answers)
	}

	detail, err := f.svc.GetTest(context.Background(), ref)
	if err != nil {
		t.Fatalf("GetTest() error = %v", err)
	}
	if len(detail.Components) != 2 || detail.Components[0].ComponentID != "demo_p_1" {
		t.Fatalf("components = %+v", detail.Components)
	}
	if detail.Rematch.Changed() {
		t.Fatalf("fresh test rematched: %+v", detail.Rematch)
	}
}

func TestCreateTestValidatesInput(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()

	if _, err := f.svc.CreateTest(ctx, CreateTestInput{ShouldBe: "correct"}); !errors.Is(err, domain.ErrLocationRequired) {
		t.Fatalf("CreateTest(no location) error = %v", err)
	}
	if _, err := f.svc.CreateTest(ctx, CreateTestInput{Location: location, ShouldBe: "maybe"}); !errors.Is(err, domain.ErrInvalidShouldBe) {
		t.Fatalf("CreateTest(bad should_be) error = %v", err)
	}
	if _, err := f.svc.CreateTest(ctx, CreateTestInput{Location: "demo/missing", ShouldBe: "correct"}); !errors.Is(err, ports.ErrProblemNotFound) {
		t.Fatalf("CreateTest(missing problem) error = %v", err)
	}
}

func TestRunTestVerdicts(t *testing.T) {
	cases := []struct {
		name     string
		shouldBe string
		answers  map[string]string
		want     domain.Verdict
	}{
		{"correct answers", "correct", map[string]string{"demo_p_1_1": "CAT", "demo_p_2_1": "42"}, domain.VerdictPass},
		{"one wrong", "correct", map[string]string{"demo_p_1_1": "dog", "demo_p_2_1": "42"}, domain.VerdictFail},
		{"expected wrong with blank", "incorrect", map[string]string{"demo_p_1_1": "dog"}, domain.VerdictPass},
		{"expected wrong but right", "incorrect", map[string]string{"demo_p_2_1": "42"}, domain.VerdictFail},
		{"unparsable number", "correct", map[string]string{"demo_p_2_1": "lots"}, domain.VerdictError},
		{"unparsable number expected", "error", map[string]string{"demo_p_2_1": "lots"}, domain.VerdictPass},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupFixture(t, nil)
			ref := f.create(t, tc.shouldBe, tc.answers)

			result, err := f.svc.RunTest(context.Background(), ref)
			if err != nil {
				t.Fatalf("RunTest() error = %v", err)
			}
			if result.Verdict != tc.want {
				t.Fatalf("verdict = %q, want %q (grades %v, err %q)", result.Verdict, tc.want, result.Grades, result.GradeError)
			}
			if got := f.stored(t, ref).Verdict; got != tc.want {
				t.Fatalf("stored verdict = %q", got)
			}
			if f.cache.data["test_run:"+ref] == "" {
				t.Fatalf("run fingerprint not cached: %#v", f.cache.data)
			}
		})
	}
}

func TestRunTestGraderFailure(t *testing.T) {
	f := setupFixture(t, failingGrader{})
	errorRef := f.create(t, "error", nil)
	correctRef := f.create(t, "correct", nil)

	result, err := f.svc.RunTest(context.Background(), errorRef)
	if err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}
	if result.Verdict != domain.VerdictPass || result.GradeError == "" {
		t.Fatalf("expected-error result = %+v", result)
	}

	result, err = f.svc.RunTest(context.Background(), correctRef)
	if err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}
	if result.Verdict != domain.VerdictError {
		t.Fatalf("verdict = %q, want ERROR", result.Verdict)
	}
}

func TestReorderedResponsesKeepTheirAnswers(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()
	ref := f.create(t, "correct", map[string]string{"demo_p_1_1": "cat", "demo_p_2_1": "42"})
	if _, err := f.svc.RunTest(ctx, ref); err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}

	f.provider.problems[location] = numberThenString

	report, err := f.svc.Rematch(ctx, RematchInput{TestRef: ref})
	if err != nil {
		t.Fatalf("Rematch() error = %v", err)
	}
	if report.Path != RematchPathReconcile || report.Renamed != 2 || report.Deleted != 0 || report.Created != 0 {
		t.Fatalf("report = %+v", report)
	}

	test := f.stored(t, ref)
	if test.Answers["demo_p_1_1"] != "42" || test.Answers["demo_p_2_1"] != "cat" {
		t.Fatalf("answers after reorder = %#v", test.Answers)
	}
	if test.Verdict != domain.VerdictNotRun {
		t.Fatalf("verdict after reconcile = %q", test.Verdict)
	}
	if _, ok := f.cache.data["test_run:"+ref]; ok {
		t.Fatalf("stale run fingerprint left in cache")
	}

	result, err := f.svc.RunTest(ctx, ref)
	if err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}
	if result.Verdict != domain.VerdictPass {
		t.Fatalf("verdict after reorder = %q (%v)", result.Verdict, result.Grades)
	}
}

func TestForcedRematchSwapsSameShapeResponses(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()
	f.provider.problems[location] = catThenElephant
	ref := f.create(t, "correct", map[string]string{"demo_p_1_1": "cat", "demo_p_2_1": "elephant"})

	f.provider.problems[location] = elephantThenCat

	report, err := f.svc.Rematch(ctx, RematchInput{TestRef: ref, Force: true})
	if err != nil {
		t.Fatalf("Rematch() error = %v", err)
	}
	if report.Renamed != 2 {
		t.Fatalf("report = %+v", report)
	}
	test := f.stored(t, ref)
	if test.Answers["demo_p_1_1"] != "elephant" || test.Answers["demo_p_2_1"] != "cat" {
		t.Fatalf("answers after swap = %#v", test.Answers)
	}

	again, err := f.svc.Rematch(ctx, RematchInput{TestRef: ref, Force: true})
	if err != nil {
		t.Fatalf("Rematch(again) error = %v", err)
	}
	if again.Changed() {
		t.Fatalf("second reconcile changed state: %+v", again)
	}
}

func TestShapeChangeReplacesComponent(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()
	ref := f.create(t, "correct", map[string]string{"demo_p_1_1": "cat", "demo_p_2_1": "42"})

	f.provider.problems[location] = `<problem>
  <stringresponse answer="cat" type="ci"><div><textline size="10"/></div></stringresponse>
  <numericalresponse answer="42"><formulaequationinput/></numericalresponse>
</problem>`

	report, err := f.svc.Rematch(ctx, RematchInput{TestRef: ref})
	if err != nil {
		t.Fatalf("Rematch() error = %v", err)
	}
	if report.Path != RematchPathReconcile || report.Deleted != 1 || report.Created != 1 || report.Matched != 1 {
		t.Fatalf("report = %+v", report)
	}

	test := f.stored(t, ref)
	if test.Answers["demo_p_1_1"] != "" || test.Answers["demo_p_2_1"] != "42" {
		t.Fatalf("answers after shape change = %#v", test.Answers)
	}
	components, err := f.repo.ListComponents(ctx, test.TestID)
	if err != nil {
		t.Fatalf("ListComponents() error = %v", err)
	}
	if len(components) != 2 {
		t.Fatalf("components = %+v", components)
	}
}

func TestCosmeticEditRefreshesSnapshotOnly(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()
	ref := f.create(t, "correct", map[string]string{"demo_p_1_1": "cat", "demo_p_2_1": "42"})
	if _, err := f.svc.RunTest(ctx, ref); err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}

	// size is an identifying attribute, so this edit is invisible
	f.provider.problems[location] = `<problem>
  <stringresponse answer="cat" type="ci"><textline size="30"/></stringresponse>
  <numericalresponse answer="42"><formulaequationinput/></numericalresponse>
</problem>`
	report, err := f.svc.Rematch(ctx, RematchInput{TestRef: ref})
	if err != nil {
		t.Fatalf("Rematch(size) error = %v", err)
	}
	if report.Path != RematchPathCheck || report.Changed() {
		t.Fatalf("size-only report = %+v", report)
	}

	f.provider.problems[location] = `<problem>
  <stringresponse answer="cat" type="cs"><textline size="10"/></stringresponse>
  <numericalresponse answer="42"><formulaequationinput/></numericalresponse>
</problem>`
	report, err = f.svc.Rematch(ctx, RematchInput{TestRef: ref})
	if err != nil {
		t.Fatalf("Rematch(type) error = %v", err)
	}
	if report.Path != RematchPathCheck || report.Refreshed != 1 || report.Renamed != 0 {
		t.Fatalf("cosmetic report = %+v", report)
	}

	test := f.stored(t, ref)
	if test.Verdict != domain.VerdictPass || test.Answers["demo_p_1_1"] != "cat" {
		t.Fatalf("test after refresh = %+v", test)
	}
	detail, err := f.svc.GetTest(ctx, ref)
	if err != nil {
		t.Fatalf("GetTest() error = %v", err)
	}
	if detail.Rematch.Changed() {
		t.Fatalf("refresh was not persisted: %+v", detail.Rematch)
	}
}

func TestTextAndIndentEditsKeepAnswers(t *testing.T) {
	edits := map[string]string{
		"relabeled choice": `<problem>
  <multiplechoiceresponse><choicegroup type="MultipleChoice"><choice correct="true">Paris, France</choice><choice correct="false">Lyon</choice></choicegroup></multiplechoiceresponse>
  <stringresponse answer="cat"><textline/></stringresponse>
</problem>`,
		"reindented": `<problem>
    <multiplechoiceresponse>
        <choicegroup type="MultipleChoice">
            <choice correct="true">Paris</choice>
            <choice correct="false">Lyon</choice>
        </choicegroup>
    </multiplechoiceresponse>
    <stringresponse answer="cat">
        <textline/>
    </stringresponse>
</problem>`,
	}
	for name, edited := range edits {
		t.Run(name, func(t *testing.T) {
			f := setupFixture(t, nil)
			ctx := context.Background()
			f.provider.problems[location] = capitalQuestion
			ref := f.create(t, "correct", map[string]string{"demo_p_1_1": "choice_0", "demo_p_2_1": "cat"})
			if _, err := f.svc.RunTest(ctx, ref); err != nil {
				t.Fatalf("RunTest() error = %v", err)
			}

			f.provider.problems[location] = edited
			report, err := f.svc.Rematch(ctx, RematchInput{TestRef: ref})
			if err != nil {
				t.Fatalf("Rematch() error = %v", err)
			}
			if report.Path != RematchPathCheck || report.Deleted != 0 || report.Created != 0 || report.Renamed != 0 {
				t.Fatalf("report = %+v", report)
			}

			test := f.stored(t, ref)
			if test.Answers["demo_p_1_1"] != "choice_0" || test.Answers["demo_p_2_1"] != "cat" {
				t.Fatalf("answers after edit = %#v", test.Answers)
			}
			if test.Verdict != domain.VerdictPass {
				t.Fatalf("verdict after edit = %q", test.Verdict)
			}
		})
	}
}

func TestUpdateAnswersReplacesMapping(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()
	ref := f.create(t, "correct", map[string]string{"demo_p_1_1": "cat", "demo_p_2_1": "42"})
	if _, err := f.svc.RunTest(ctx, ref); err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}

	if err := f.svc.UpdateAnswers(ctx, UpdateAnswersInput{
		TestRef: ref,
		Answers: map[string]string{"demo_p_2_1": "41", "bogus": "x"},
	}); err != nil {
		t.Fatalf("UpdateAnswers() error = %v", err)
	}

	test := f.stored(t, ref)
	if len(test.Answers) != 2 || test.Answers["demo_p_1_1"] != "" || test.Answers["demo_p_2_1"] != "41" {
		t.Fatalf("answers = %#v", test.Answers)
	}
	if test.Verdict != domain.VerdictNotRun {
		t.Fatalf("verdict = %q", test.Verdict)
	}

	summary, err := f.svc.Summary(ctx, ref)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(summary.Answers) != 2 || summary.Answers[0] != NotSetAnswer || summary.Answers[1] != "41" {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestUpdateShouldBeResetsVerdict(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()
	ref := f.create(t, "correct", map[string]string{"demo_p_1_1": "cat"})
	if _, err := f.svc.RunTest(ctx, ref); err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}

	if err := f.svc.UpdateShouldBe(ctx, UpdateShouldBeInput{TestRef: ref, ShouldBe: "incorrect"}); err != nil {
		t.Fatalf("UpdateShouldBe() error = %v", err)
	}
	test := f.stored(t, ref)
	if test.ShouldBe != domain.ShouldBeIncorrect || test.Verdict != domain.VerdictNotRun {
		t.Fatalf("test = %+v", test)
	}

	result, err := f.svc.RunTest(ctx, ref)
	if err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}
	if result.Verdict != domain.VerdictFail {
		t.Fatalf("verdict = %q", result.Verdict)
	}
}

func TestRunAllLoadsProblemOnce(t *testing.T) {
	f := setupFixture(t, nil)
	f.create(t, "correct", map[string]string{"demo_p_1_1": "cat"})
	f.create(t, "incorrect", map[string]string{"demo_p_1_1": "dog"})

	f.provider.loads = 0
	results, err := f.svc.RunAll(context.Background(), location)
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}
	if len(results) != 2 || results[0].Verdict != domain.VerdictPass || results[1].Verdict != domain.VerdictPass {
		t.Fatalf("results = %+v", results)
	}
	if f.provider.loads != 1 {
		t.Fatalf("problem loads = %d, want 1", f.provider.loads)
	}
}

func TestRunStaleSkipsTestsRunAgainstSameContent(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()
	ranRef := f.create(t, "correct", map[string]string{"demo_p_1_1": "cat"})
	freshRef := f.create(t, "incorrect", map[string]string{"demo_p_1_1": "dog"})
	if _, err := f.svc.RunTest(ctx, ranRef); err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}

	results, err := f.svc.RunStale(ctx, location)
	if err != nil {
		t.Fatalf("RunStale() error = %v", err)
	}
	if len(results) != 1 || results[0].TestRef != freshRef {
		t.Fatalf("RunStale() = %+v, want only %s", results, freshRef)
	}

	results, err = f.svc.RunStale(ctx, location)
	if err != nil {
		t.Fatalf("RunStale(again) error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("RunStale(again) = %+v, want none", results)
	}

	f.provider.problems[location] = `<problem>
  <stringresponse answer="cat" type="cs"><textline size="10"/></stringresponse>
  <numericalresponse answer="42"><formulaequationinput/></numericalresponse>
</problem>`
	results, err = f.svc.RunStale(ctx, location)
	if err != nil {
		t.Fatalf("RunStale(edited) error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("RunStale(edited) = %+v, want both tests", results)
	}

	if err := f.svc.UpdateAnswers(ctx, UpdateAnswersInput{TestRef: ranRef, Answers: map[string]string{"demo_p_1_1": "cat"}}); err != nil {
		t.Fatalf("UpdateAnswers() error = %v", err)
	}
	results, err = f.svc.RunStale(ctx, location)
	if err != nil {
		t.Fatalf("RunStale(answered) error = %v", err)
	}
	if len(results) != 1 || results[0].TestRef != ranRef {
		t.Fatalf("RunStale(answered) = %+v, want only %s", results, ranRef)
	}
}

func TestDeleteTest(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()
	ref := f.create(t, "correct", nil)

	if err := f.svc.DeleteTest(ctx, ref); err != nil {
		t.Fatalf("DeleteTest() error = %v", err)
	}
	if _, err := f.svc.GetTest(ctx, ref); !errors.Is(err, ports.ErrTestNotFound) {
		t.Fatalf("GetTest(deleted) error = %v", err)
	}
	if err := f.svc.DeleteTest(ctx, ref); !errors.Is(err, ports.ErrTestNotFound) {
		t.Fatalf("DeleteTest(again) error = %v", err)
	}
	if err := f.svc.DeleteTest(ctx, "issue#1"); !errors.Is(err, domain.ErrInvalidTestRef) {
		t.Fatalf("DeleteTest(bad ref) error = %v", err)
	}
}

func TestRunTestMissingProblem(t *testing.T) {
	f := setupFixture(t, nil)
	ref := f.create(t, "correct", nil)
	delete(f.provider.problems, location)

	if _, err := f.svc.RunTest(context.Background(), ref); !errors.Is(err, ports.ErrProblemNotFound) {
		t.Fatalf("RunTest() error = %v", err)
	}
}

func TestListTestsByLocation(t *testing.T) {
	f := setupFixture(t, nil)
	f.provider.problems["demo/q"] = catThenElephant
	f.create(t, "correct", nil)
	if _, err := f.svc.CreateTest(context.Background(), CreateTestInput{Location: "demo/q", ShouldBe: "error"}); err != nil {
		t.Fatalf("CreateTest(demo/q) error = %v", err)
	}

	items, err := f.svc.ListTests(context.Background(), "demo/q")
	if err != nil {
		t.Fatalf("ListTests() error = %v", err)
	}
	if len(items) != 1 || items[0].TestRef != "test#2" || items[0].ShouldBe != domain.ShouldBeError {
		t.Fatalf("items = %+v", items)
	}
}

func TestImportSuite(t *testing.T) {
	f := setupFixture(t, nil)
	dir := t.TempDir()

	good := filepath.Join(dir, "suite.toml")
	if err := os.WriteFile(good, []byte(`version = 1

[[test]]
location = "demo/p"
should_be = "correct"
[test.answers]
demo_p_1_1 = "cat"
demo_p_2_1 = "42"

[[test]]
location = "demo/p"
should_be = "incorrect"
[test.answers]
demo_p_1_1 = "dog"
`), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}

	refs, err := f.svc.ImportSuite(context.Background(), good)
	if err != nil {
		t.Fatalf("ImportSuite() error = %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("refs = %v", refs)
	}
	if got := f.stored(t, refs[0]).Answers["demo_p_2_1"]; got != "42" {
		t.Fatalf("imported answer = %q", got)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte(`version = 1

[[test]]
location = "demo/p"
should_be = "correct"

[[test]]
location = "demo/p"
should_be = "sometimes"
`), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}
	if _, err := f.svc.ImportSuite(context.Background(), bad); !errors.Is(err, domain.ErrInvalidShouldBe) {
		t.Fatalf("ImportSuite(bad) error = %v", err)
	}
	items, err := f.svc.ListTests(context.Background(), "")
	if err != nil {
		t.Fatalf("ListTests() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("invalid suite created tests: %d", len(items))
	}
}
