package transfers

import (
	"errors"
	"fmt"
)

// Reason names the precondition a rejected action failed, so callers can
// re-render the right phase for the right actor.
type Reason string

const (
	ReasonWindowInactive    Reason = "window_inactive"
	ReasonNotYourTurn       Reason = "not_your_turn"
	ReasonWrongPhase        Reason = "wrong_phase"
	ReasonPlayerUnavailable Reason = "player_unavailable"
	ReasonPositionMismatch  Reason = "position_mismatch"
	ReasonEmptyOrder        Reason = "empty_managers_order"
)

// ValidationError rejects an action without mutating state. Always
// recoverable: the caller retries with the correct turn/phase/player.
type ValidationError struct {
	Reason Reason
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func validationErr(reason Reason, format string, args ...any) error {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a precondition rejection rather than
// an infrastructure failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrNothingToRevert is returned when no unmatched release exists for the
// current manager.
var ErrNothingToRevert = errors.New("no unmatched transfer_out to revert")
