// Package tasks keeps local task state in sync with the transcription backend.
//
// # Core Pieces
//
//  1. [Reconcile] : pure translation of one backend snapshot into UI-ready
//     state plus a liveness verdict
//     - never errors, never panics; unknown wire values keep the prior view
//     - decides when polling may stop
//
//  2. [Poller] : the single recurring timer behind an engine
//     - idempotent Start, immediate first tick, fixed interval, no backoff
//
//  3. [SyncEngine] : single-subject orchestrator
//     - submit, poll, reconcile, restore from the ledger on subject change
//
//  4. [BatchEngine] : many subjects, one backend round trip per tick
//     - one FetchAll demultiplexed across tracked jobs
//
// # Updates
//
// Engines publish [TaskView] values through a non-blocking channel. Sends
// use select with default, so a slow or absent consumer never stalls a tick.
//
// # Persistence
//
// The [Ledger] interface is the durable subject to job mapping
// (repositories.JobLedgerRepository). Engines record submissions there and
// read it back when a subject reappears, which is what lets a restarted
// process resume polling a job it submitted in an earlier life.
package tasks
