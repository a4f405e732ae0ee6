package contenttest

import (
	"fmt"
	"strings"
)

// Expectation is what the author expects grading to report.
type Expectation string

const (
	ShouldBeCorrect   Expectation = "correct"
	ShouldBeIncorrect Expectation = "incorrect"
	ShouldBeError     Expectation = "error"
)

func ParseExpectation(raw string) (Expectation, error) {
	switch Expectation(strings.ToLower(strings.TrimSpace(raw))) {
	case ShouldBeCorrect:
		return ShouldBeCorrect, nil
	case ShouldBeIncorrect:
		return ShouldBeIncorrect, nil
	case ShouldBeError:
		return ShouldBeError, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidShouldBe, raw)
	}
}

type Verdict string

const (
	VerdictNotRun Verdict = "Not Run"
	VerdictPass   Verdict = "Pass"
	VerdictFail   Verdict = "Fail"
	VerdictError  Verdict = "ERROR"
)

// Correctness is the grader's per-field result.
type Correctness string

const (
	Correct   Correctness = "correct"
	Incorrect Correctness = "incorrect"
)

// DecideVerdict compares a grading outcome with the expectation.
// A grading failure passes only when an error was expected. Blank answers are
// not held against the test.
func DecideVerdict(shouldBe Expectation, grades map[string]Correctness, gradeErr error, answers map[string]string) Verdict {
	if gradeErr != nil {
		if shouldBe == ShouldBeError {
			return VerdictPass
		}
		return VerdictError
	}

	for fieldID, grade := range grades {
		if answers[fieldID] == "" {
			continue
		}
		if string(grade) != string(shouldBe) {
			return VerdictFail
		}
	}
	return VerdictPass
}
