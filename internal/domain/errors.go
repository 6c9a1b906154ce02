package domain

import "errors"

// ErrConcurrentModification signals that the persisted status changed between
// the read and the guarded write of a transition attempt.
var ErrConcurrentModification = errors.New("request modified concurrently")

// ErrNotApplicable signals an SLA verdict request for a request that has no
// submission instant or is already terminal.
var ErrNotApplicable = errors.New("sla verdict not applicable")

// ErrRequestNotFound signals a missing service request.
var ErrRequestNotFound = errors.New("service request not found")
