// Package aggregates defines domain-facing aggregate contracts and the
// classified error type shared by every layer.
//
// Contracts avoid persistence details and mark the write boundaries where an
// invariant spanning more than one row must hold atomically.
package aggregates
