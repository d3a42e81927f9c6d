// Package aggregates contains infrastructure implementations of domain
// aggregate contracts.
//
// Implementations compose table-level repos from internal/data/repos and own
// the transaction boundary for writes that must keep more than one row
// consistent. Callers never see a half-applied write: every failure inside
// the boundary rolls the whole transaction back through the driver.
package aggregates
