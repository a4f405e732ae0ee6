package contenttest

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/errs"
	"contenttest/internal/ports"
)

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	return nil
}

func parseTestRef(testRef string) (uint64, error) {
	return domain.ParseTestRef(testRef)
}

func formatTestRef(testID uint64) string {
	return domain.FormatTestRef(testID)
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// cacheRunKey holds the problem fingerprint a test's verdict was computed against.
func cacheRunKey(testRef string) string {
	return "test_run:" + testRef
}

func (s *Service) getTest(ctx context.Context, testID uint64) (ports.ContentTest, error) {
	test, err := s.repo.GetTest(ctx, testID)
	if err != nil {
		if errors.Is(err, ports.ErrTestNotFound) {
			return ports.ContentTest{}, fmt.Errorf("%w: %s", ports.ErrTestNotFound, formatTestRef(testID))
		}
		return ports.ContentTest{}, err
	}
	return test, nil
}
