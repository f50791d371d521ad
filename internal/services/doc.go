// Package services contains the HTTP client for the yt2text backend.
//
// The backend exposes a small JSON surface:
//
//	GET  /api/health      liveness probe (3s timeout, gates submissions)
//	POST /api/process     submit one video        -> {task_id}
//	POST /api/batch       submit many videos      -> {task_ids}
//	GET  /api/tasks       all task snapshots      -> {tasks: [...]}
//	GET  /api/tasks/{id}  single task snapshot
//
// A body of {"error": "task not found"} on the single-task endpoint is the
// distinguished signal that the backend lost the job (server restart); it
// surfaces as [shared.ErrJobNotFound] so the engine can treat it as fatal
// for that job while leaving the ledger entry in place.
package services
