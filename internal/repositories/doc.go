// Package repositories implements SQLite persistence for the job ledger.
//
// Key Implementations:
//   - [JobLedgerRepository] : durable subject to backend-job mapping with
//     upsert-on-resubmission semantics and bounded pruning
//   - [SubjectListRepository] : last extracted subject list per source URL
//     so batch sessions survive restarts
//
// Ledger entries are keyed by subject so a resubmission for the same video
// replaces the previous mapping instead of accumulating rows.
package repositories
