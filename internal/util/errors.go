package util

import "errors"

// ErrorKind classifies failures for transport mapping.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidRequest
)

var (
	ErrUnauthorized = errors.New("unauthorized")

	ErrNotEnrolled          = errors.New("user is not enrolled in this module")
	ErrTestLocked           = errors.New("test is locked until its parent is complete")
	ErrExamNotYetAvailable  = errors.New("module exam is not yet available")
	ErrSubTopicIncomplete   = errors.New("subtopic content is not complete")
	ErrSubTopicHasNoContent = errors.New("subtopic has no published content")
	ErrCertificateNotReady  = errors.New("certificate is not available yet")
	ErrNotEligible          = errors.New("certificate requirements not met")
	ErrPermissionDenied     = errors.New("permission denied")

	ErrModuleNotFound     = errors.New("module not found")
	ErrLevelNotFound      = errors.New("level not found")
	ErrSubTopicNotFound   = errors.New("subtopic not found")
	ErrContentNotFound    = errors.New("content not found")
	ErrTestNotFound       = errors.New("test not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	ErrMissingScope      = errors.New("missing required scope ids")
	ErrInvalidTestKind   = errors.New("invalid test kind")
	ErrScopeMismatch     = errors.New("scope ids do not match the test")
	ErrMalformedAnswers  = errors.New("malformed answer map")
	ErrTestHasNoQuestion = errors.New("test has no questions")
	ErrInvalidArgument   = errors.New("invalid argument")
)

var kinds = map[error]ErrorKind{
	ErrUnauthorized: KindUnauthorized,

	ErrNotEnrolled:          KindForbidden,
	ErrTestLocked:           KindForbidden,
	ErrExamNotYetAvailable:  KindForbidden,
	ErrSubTopicIncomplete:   KindForbidden,
	ErrSubTopicHasNoContent: KindForbidden,
	ErrCertificateNotReady:  KindForbidden,
	ErrNotEligible:          KindForbidden,
	ErrPermissionDenied:     KindForbidden,

	ErrModuleNotFound:     KindNotFound,
	ErrLevelNotFound:      KindNotFound,
	ErrSubTopicNotFound:   KindNotFound,
	ErrContentNotFound:    KindNotFound,
	ErrTestNotFound:       KindNotFound,
	ErrEnrollmentNotFound: KindNotFound,

	ErrMissingScope:      KindInvalidRequest,
	ErrInvalidTestKind:   KindInvalidRequest,
	ErrScopeMismatch:     KindInvalidRequest,
	ErrMalformedAnswers:  KindInvalidRequest,
	ErrTestHasNoQuestion: KindInvalidRequest,
	ErrInvalidArgument:   KindInvalidRequest,
}

// KindOf walks the wrap chain and returns the kind of the first known sentinel.
// Anything unrecognised is an internal failure.
func KindOf(err error) ErrorKind {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if k, ok := kinds[e]; ok {
			return k
		}
	}
	return KindInternal
}
