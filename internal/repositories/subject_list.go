package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/shared"
)

// SubjectListRepository persists the last extracted subject list per listing
// page URL so a batch session can be restored after a restart.
type SubjectListRepository struct {
	db *sql.DB
}

// NewSubjectListRepository creates a new SubjectListRepository with the given database connection
func NewSubjectListRepository(db *sql.DB) *SubjectListRepository {
	return &SubjectListRepository{db: db}
}

// Replace stores the subject list for a source URL, discarding any previous
// list for the same URL. Positions follow slice order.
func (r *SubjectListRepository) Replace(sourceURL string, subjects []models.Subject) error {
	if sourceURL == "" {
		return fmt.Errorf("%w: source url is required", shared.ErrInvalidInput)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM subject_lists WHERE source_url = ?`, sourceURL); err != nil {
		return fmt.Errorf("failed to clear previous list: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO subject_lists (id, source_url, video_id, label, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, subject := range subjects {
		if _, err := stmt.Exec(shared.GenerateID(), sourceURL, subject.ID, subject.Label, i, now); err != nil {
			return fmt.Errorf("failed to insert subject %s: %w", subject.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Get retrieves the stored subject list for a source URL in extraction order.
func (r *SubjectListRepository) Get(sourceURL string) ([]models.Subject, error) {
	query := `
		SELECT video_id, label
		FROM subject_lists
		WHERE source_url = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query subject list: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var subject models.Subject
		if err := rows.Scan(&subject.ID, &subject.Label); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subject.CanonicalURL = "https://www.youtube.com/watch?v=" + subject.ID
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return subjects, nil
}
