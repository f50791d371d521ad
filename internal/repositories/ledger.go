package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/shared"
)

// JobLedgerRepository persists subject -> job mappings in the job_ledger table.
//
// Put upserts on subject_id, so resubmitting the same video replaces the old
// mapping. Entries are never removed on job failure; Prune is the only
// deletion path and keeps the most recently updated rows.
type JobLedgerRepository struct {
	db *sql.DB
}

// NewJobLedgerRepository creates a new JobLedgerRepository with the given database connection
func NewJobLedgerRepository(db *sql.DB) *JobLedgerRepository {
	return &JobLedgerRepository{db: db}
}

// Get retrieves the ledger entry for a subject, returning [shared.ErrLedgerMiss]
// when no job has been recorded for it.
func (r *JobLedgerRepository) Get(subjectID string) (*models.JobRecord, error) {
	query := `
		SELECT subject_id, job_id, label, created_at, updated_at
		FROM job_ledger
		WHERE subject_id = ?
	`

	record := &models.JobRecord{}
	err := r.db.QueryRow(query, subjectID).Scan(
		&record.SubjectID,
		&record.JobID,
		&record.Label,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no job recorded for subject %s", shared.ErrLedgerMiss, subjectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	return record, nil
}

// Put records the job submitted for a subject, replacing any previous mapping.
func (r *JobLedgerRepository) Put(subjectID, jobID, label string) error {
	if subjectID == "" || jobID == "" {
		return fmt.Errorf("%w: subject id and job id are required", shared.ErrInvalidInput)
	}

	now := time.Now()
	query := `
		INSERT INTO job_ledger (id, subject_id, job_id, label, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(subject_id) DO UPDATE SET
			job_id = excluded.job_id,
			label = excluded.label,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, shared.GenerateID(), subjectID, jobID, label, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert ledger entry: %w", err)
	}

	return nil
}

// PutAll records a batch of submissions in a single transaction.
func (r *JobLedgerRepository) PutAll(records []models.JobRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO job_ledger (id, subject_id, job_id, label, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(subject_id) DO UPDATE SET
			job_id = excluded.job_id,
			label = excluded.label,
			updated_at = excluded.updated_at
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, record := range records {
		if record.SubjectID == "" || record.JobID == "" {
			return fmt.Errorf("%w: subject id and job id are required", shared.ErrInvalidInput)
		}
		if _, err := stmt.Exec(shared.GenerateID(), record.SubjectID, record.JobID, record.Label, now, now); err != nil {
			return fmt.Errorf("failed to upsert ledger entry for %s: %w", record.SubjectID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetAll returns the full subject -> job mapping.
func (r *JobLedgerRepository) GetAll() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT subject_id, job_id FROM job_ledger`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	mapping := map[string]string{}
	for rows.Next() {
		var subjectID, jobID string
		if err := rows.Scan(&subjectID, &jobID); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		mapping[subjectID] = jobID
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return mapping, nil
}

// List returns all ledger entries, most recently updated first.
func (r *JobLedgerRepository) List() ([]*models.JobRecord, error) {
	query := `
		SELECT subject_id, job_id, label, created_at, updated_at
		FROM job_ledger
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var records []*models.JobRecord
	for rows.Next() {
		record := &models.JobRecord{}
		err := rows.Scan(&record.SubjectID, &record.JobID, &record.Label, &record.CreatedAt, &record.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Prune deletes all but the max most recently updated entries and returns
// the number of rows removed.
func (r *JobLedgerRepository) Prune(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("%w: prune bound must be positive", shared.ErrInvalidInput)
	}

	query := `
		DELETE FROM job_ledger
		WHERE subject_id NOT IN (
			SELECT subject_id FROM job_ledger
			ORDER BY updated_at DESC
			LIMIT ?
		)
	`

	result, err := r.db.Exec(query, max)
	if err != nil {
		return 0, fmt.Errorf("failed to prune ledger: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(removed), nil
}
