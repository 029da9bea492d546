// Package jobs contains the scheduled background jobs of the application.
//
// Two jobs run on cron schedules:
//
//   - StuckAssignmentJob releases accepted orders whose pickup never happened
//     within the assignment timeout, returning them to the dispatch pool.
//     Runs every 30 seconds.
//   - AgentPresenceCleanupJob prunes presence records of agents that stopped
//     pinging, keeping the dispatch index free of dead entries. Runs every
//     minute.
//
// JobManager bundles the jobs behind StartAll and StopAll so the composition
// root can manage their lifecycle as one unit.
package jobs
