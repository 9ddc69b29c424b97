package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/golf-association/models"
)

// DefaultAuditLimit caps the classification history listing.
const DefaultAuditLimit = 50

type ClassificationAuditRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, audit *models.ClassificationAudit) error
	ListByEvent(ctx context.Context, eventID string, limit int) ([]models.ClassificationAudit, error)
}

type postgresClassificationAuditRepository struct {
	db *sql.DB
}

func NewPostgresClassificationAuditRepository(db *sql.DB) ClassificationAuditRepository {
	return &postgresClassificationAuditRepository{db: db}
}

func (r *postgresClassificationAuditRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresClassificationAuditRepository) Insert(ctx context.Context, exec SQLExecutor, a *models.ClassificationAudit) error {
	executor := r.getExecutor(exec)
	snapshot := a.Snapshot
	if snapshot == nil {
		snapshot = []models.FinalClassificationRow{}
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode classification snapshot: %w", err)
	}

	query := `
		INSERT INTO event_classification_audit (
			event_id, actor_user_id, action, locked, final_classification_snapshot
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err = executor.QueryRowContext(ctx, query,
		a.EventID, a.ActorUserID, a.Action, a.Locked, string(raw),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert classification audit: %w", err)
	}
	return nil
}

// ListByEvent returns the newest audit rows first, with the actor's name
// resolved from profiles.
func (r *postgresClassificationAuditRepository) ListByEvent(ctx context.Context, eventID string, limit int) ([]models.ClassificationAudit, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	executor := r.getExecutor(nil)
	query := `
		SELECT
			a.id, a.event_id, a.actor_user_id, a.created_at, a.action, a.locked,
			a.final_classification_snapshot,
			NULLIF(TRIM(CONCAT_WS(' ', TRIM(p.first_name), TRIM(p.last_name))), '')
		FROM event_classification_audit a
		LEFT JOIN profiles p ON p.id = a.actor_user_id
		WHERE a.event_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2`

	rows, err := executor.QueryContext(ctx, query, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list classification audits: %w", err)
	}
	defer rows.Close()

	audits := make([]models.ClassificationAudit, 0)
	for rows.Next() {
		var (
			a         models.ClassificationAudit
			snapshot  []byte
			actorName *string
		)
		if scanErr := rows.Scan(
			&a.ID, &a.EventID, &a.ActorUserID, &a.CreatedAt, &a.Action, &a.Locked,
			&snapshot, &actorName,
		); scanErr != nil {
			return nil, scanErr
		}
		a.Snapshot = models.NormalizeFinalClassification(snapshot)
		if a.ActorUserID != nil {
			a.Actor = &models.AuditActor{ID: *a.ActorUserID, Name: actorName}
		}
		audits = append(audits, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return audits, nil
}
