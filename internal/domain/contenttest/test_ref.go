package contenttest

import (
	"fmt"
	"strconv"
	"strings"
)

const testRefPrefix = "test#"

// ParseTestRef accepts "test#<id>" or a bare positive id.
func ParseTestRef(ref string) (uint64, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return 0, ErrTestRefRequired
	}

	numText := strings.TrimPrefix(trimmed, testRefPrefix)
	if numText == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTestRef, ref)
	}

	testID, err := strconv.ParseUint(numText, 10, 64)
	if err != nil || testID == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTestRef, ref)
	}
	return testID, nil
}

func FormatTestRef(testID uint64) string {
	return fmt.Sprintf("%s%d", testRefPrefix, testID)
}
