package services

import "errors"

// Named error kinds surfaced to callers. Handlers map these to HTTP statuses;
// anything else is treated as an internal persistence failure.
var (
	// ErrAlreadyDrawn rejects a draw for a contest that already has a winner.
	// Non-retryable.
	ErrAlreadyDrawn = errors.New("a winner has already been selected for this contest")

	// ErrNoEligibleParticipants rejects a draw over an empty eligible pool.
	// The caller may adjust eligibility criteria and retry later.
	ErrNoEligibleParticipants = errors.New("no eligible participants for this contest")

	// ErrAttemptLimitReached rejects a quiz submission past the participant's
	// attempt budget (default attempts + earned extra participations).
	ErrAttemptLimitReached = errors.New("attempt limit reached for this contest")

	// ErrContestNotOpen rejects participation in a contest that is not
	// currently published and running.
	ErrContestNotOpen = errors.New("contest is not open for participation")

	// ErrParticipationCodeExhausted signals that unique-code generation ran
	// out of retries. Loud failure, never a silent collision.
	ErrParticipationCodeExhausted = errors.New("could not generate a unique participation code")
)
