package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrNotPublished         = errors.New("assessment not published")
	ErrNotDraft             = errors.New("assessment no longer editable")
	ErrOutOfWindow          = errors.New("assessment not available at this time")
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	ErrAttemptClosed        = errors.New("attempt already closed")
	ErrAttemptNotFinished   = errors.New("attempt still in progress")
	ErrQuestionLocked       = errors.New("question referenced by a published assessment")
	ErrNoQuestions          = errors.New("assessment has no questions")
)
