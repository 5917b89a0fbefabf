package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Clients and stores return these
// (optionally wrapped) so services can translate them into domain outcomes.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist downstream or in a store
// - ErrUnavailable: service or resource temporarily unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
