// Package order implements the Order aggregate root and its lifecycle state
// machine.
//
// An order moves through a fixed status progression (pending, confirmed,
// preparing, ready, picked_up, on_the_way, delivered) with cancellation
// allowed from every non-terminal state. The aggregate is the single
// authority on which transitions are valid, records every committed
// transition in an append-only status history, holds the monetary invariant
// total = subtotal + deliveryFee - discount, and accepts the one-time
// earnings split on entry into a terminal status.
//
// Orders carry an optimistic concurrency version: repositories persist
// mutations conditionally on the version the aggregate was loaded with, so
// concurrent writers on the same order are serialized without locks.
package order
