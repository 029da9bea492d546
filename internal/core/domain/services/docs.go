// Package services provides domain services that orchestrate business rules
// across multiple domain entities in the dispatch system.
//
// The package includes:
//   - EarningsCalculator: divides an order's distributable total among vendor,
//     delivery agent and platform at terminal transitions
//
// Domain services hold logic that doesn't naturally belong to a single
// aggregate root, following Domain-Driven Design principles.
package services
