package contenttest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"contenttest/internal/bootstrap/logging"
	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/errs"
)

const suiteVersion = 1

type suiteTest struct {
	Location string            `toml:"location"`
	ShouldBe string            `toml:"should_be"`
	Answers  map[string]string `toml:"answers"`
}

type suiteFile struct {
	Version int         `toml:"version"`
	Tests   []suiteTest `toml:"test"`
}

func loadSuiteFile(path string) (suiteFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return suiteFile{}, errors.New("suite file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return suiteFile{}, err
	}

	var suite suiteFile
	if err := toml.Unmarshal(raw, &suite); err != nil {
		return suiteFile{}, err
	}
	if err := validateSuite(suite); err != nil {
		return suiteFile{}, err
	}
	return suite, nil
}

func validateSuite(suite suiteFile) error {
	if suite.Version != suiteVersion {
		return fmt.Errorf("unsupported suite version %d: expected version = %d", suite.Version, suiteVersion)
	}
	if len(suite.Tests) == 0 {
		return errors.New("suite has no [[test]] entries")
	}
	for i, test := range suite.Tests {
		if strings.TrimSpace(test.Location) == "" {
			return fmt.Errorf("test %d: %w", i+1, domain.ErrLocationRequired)
		}
		if _, err := domain.ParseExpectation(test.ShouldBe); err != nil {
			return fmt.Errorf("test %d: %w", i+1, err)
		}
	}
	return nil
}

// ImportSuite creates one test per [[test]] entry of a TOML suite file.
// The whole file is validated first; creation stops at the first failure and
// returns the refs created so far.
func (s *Service) ImportSuite(ctx context.Context, path string) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if err := s.checkDeps(true); err != nil {
		return nil, err
	}

	suite, err := loadSuiteFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, "load suite %q", path)
	}

	refs := make([]string, 0, len(suite.Tests))
	for i, test := range suite.Tests {
		ref, err := s.CreateTest(ctx, CreateTestInput{
			Location: test.Location,
			ShouldBe: test.ShouldBe,
			Answers:  test.Answers,
		})
		if err != nil {
			return refs, errs.Wrapf(err, "import test %d", i+1)
		}
		refs = append(refs, ref)
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.contenttest")),
		"suite imported",
		slog.String("path", path),
		slog.Int("tests", len(refs)),
	)
	return refs, nil
}
