package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("domain: not found")

	ErrUnknownMode       = errors.New("domain: unknown guess mode")
	ErrUnknownDifficulty = errors.New("domain: unknown difficulty")
	ErrUnresolvedUser    = errors.New("domain: contributor has no resolved display name")

	ErrNoTracks       = errors.New("domain: session has no tracks")
	ErrEmptyGuess     = errors.New("domain: guess is empty")
	ErrRoundOver      = errors.New("domain: round already finished")
	ErrRoundNotSolved = errors.New("domain: round is still in progress")
	ErrSkipNotAllowed = errors.New("domain: skip not allowed on the last guess")
	ErrNoSkipsLeft    = errors.New("domain: no skips left")
	ErrCannotEnd      = errors.New("domain: game can only be ended when no skips are left")
	ErrSessionOver    = errors.New("domain: session is over")
)

// ErrFetchFailed matches every FetchError.
var ErrFetchFailed = errors.New("fetch failed")

// FetchError is returned when an external resolver answers with a non-2xx status.
type FetchError struct {
	Resource string
	Status   int
}

func (e FetchError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("fetch failed: status %d", e.Status)
	}
	return fmt.Sprintf("fetch %s failed: status %d", e.Resource, e.Status)
}

func (e FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}
