package contenttest

import "errors"

var (
	ErrTestRefRequired  = errors.New("test ref is required")
	ErrInvalidTestRef   = errors.New("invalid test ref")
	ErrLocationRequired = errors.New("problem location is required")
	ErrInvalidShouldBe  = errors.New("invalid expected outcome")
	ErrEmptyXML         = errors.New("xml has no root element")
)
