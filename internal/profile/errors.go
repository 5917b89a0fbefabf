package profile

import (
	"errors"
	"fmt"
)

// Domain errors handlers branch on with errors.Is. Neither is retried by this
// service: a missing membership is the caller's fault, an unavailable
// downstream is the one class the circuit breaker exists to contain.
var (
	ErrMembershipNotFound    = errors.New("membership not found")
	ErrDownstreamUnavailable = errors.New("downstream service unavailable")
)

// MembershipNotFoundError carries the id so the response reason can name it.
type MembershipNotFoundError struct {
	MembershipID int
}

func (e *MembershipNotFoundError) Error() string {
	return fmt.Sprintf("Membership [%d] does not exist", e.MembershipID)
}

func (e *MembershipNotFoundError) Is(target error) bool {
	return target == ErrMembershipNotFound
}
