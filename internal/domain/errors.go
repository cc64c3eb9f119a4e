// Package domain holds the error kinds shared by the progression engine and its storage backends.
package domain

import "errors"

// Error kinds returned by the engine. All of them are rejections of a single call:
// nothing is mutated when one is returned.
var (
	ErrInsufficientContent    = errors.New("no questions available")
	ErrSessionNotFound        = errors.New("quiz session not found")
	ErrSessionClosed          = errors.New("quiz session is closed")
	ErrQuestionNotInSession   = errors.New("question was not served in this session")
	ErrAnswerAlreadySubmitted = errors.New("question already answered in this session")
	ErrUserProgressNotFound   = errors.New("user progress not found")
)

// Validation and storage errors.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidLevel     = errors.New("invalid level")
	ErrInvalidCount     = errors.New("invalid question count")
	ErrInvalidQuestion  = errors.New("invalid question")
	ErrOptimisticLock   = errors.New("record was modified by another process")
	ErrLockTimeout      = errors.New("timed out waiting for user lock")
)
