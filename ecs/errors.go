package ecs

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Fatal conditions. These are never returned; they are the root cause of the
// value passed to panic, so a recovering caller can classify them with eris.Is.
var (
	ErrInvariantViolation      = eris.New("store invariant violated")
	ErrMutationDuringIteration = eris.New("structural mutation during iteration")
	ErrInvalidComponent        = eris.New("invalid component")
	ErrUniverseSealed          = eris.New("component universe is sealed")
)

// fatalf logs and panics. The store is not usable after one of these.
func fatalf(log Logger, cause error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Error(msg, "cause", cause.Error())
	panic(eris.Wrap(cause, msg))
}
