// Package agent holds the delivery-agent presence model used by dispatch.
//
// Presence is ephemeral by nature: it lives in the in-memory dispatch index,
// is refreshed by agent heartbeats, and decays when heartbeats stop. The
// aggregate here defines what a report contains and when an agent counts as
// eligible for new orders.
package agent
