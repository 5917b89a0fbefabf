// Package audit records security-relevant outcomes - authorization denials,
// membership precondition failures, downstream outages - on an append-only
// trail, decoupled from the request path.
package audit

import "time"

// Actions recorded on the trail.
const (
	ActionMembershipDenied      = "membership_denied"
	ActionDownstreamUnavailable = "downstream_unavailable"
	ActionTokenIssued           = "token_issued"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Username  string
	Action    string
	Subject   string
	Reason    string
}
