package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/golf-association/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound           = errors.New("event not found")
	ErrEventInvalidCourse      = errors.New("invalid course reference")
	ErrEventInvalidAssociation = errors.New("invalid association reference")
)

type EventRepository interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
	ListSummaries(ctx context.Context, ids []string) ([]models.EventSummary, error)
	Update(ctx context.Context, exec SQLExecutor, event *models.Event) error
	UpdateConfig(ctx context.Context, exec SQLExecutor, id string, config models.EventConfig) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Dates are read as text so the API returns them exactly as stored.
const selectEventColumns = `
		SELECT
			id, association_id, name, status, competition_mode,
			registration_start::text, registration_end::text, event_date::text,
			course_id, location, description, config, COALESCE(has_handicap_ranking, false),
			COALESCE(registered_player_ids::text[], '{}'), created_by
		FROM events`

func (r *postgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	executor := r.getExecutor(nil)
	query := selectEventColumns + `
		WHERE id = $1`

	var (
		e      models.Event
		config []byte
		ids    pq.StringArray
	)
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.AssociationID, &e.Name, &e.Status, &e.CompetitionMode,
		&e.RegistrationStart, &e.RegistrationEnd, &e.EventDate,
		&e.CourseID, &e.Location, &e.Description, &config, &e.HasHandicapRanking,
		&ids, &e.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	e.Config = models.DecodeEventConfig(config)
	e.RegisteredPlayerIDs = []string(ids)
	if e.RegisteredPlayerIDs == nil {
		e.RegisteredPlayerIDs = []string{}
	}
	return &e, nil
}

// ListSummaries returns id, name and config of the given events. Unknown ids
// are skipped; order is unspecified.
func (r *postgresEventRepository) ListSummaries(ctx context.Context, ids []string) ([]models.EventSummary, error) {
	summaries := make([]models.EventSummary, 0, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	executor := r.getExecutor(nil)
	query := `SELECT id, name, config FROM events WHERE id::text = ANY($1)`

	rows, err := executor.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s      models.EventSummary
			config []byte
		)
		if scanErr := rows.Scan(&s.ID, &s.Name, &config); scanErr != nil {
			return nil, scanErr
		}
		s.Config = models.DecodeEventConfig(config)
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, exec SQLExecutor, e *models.Event) error {
	executor := r.getExecutor(exec)
	config, err := json.Marshal(e.Config)
	if err != nil {
		return fmt.Errorf("failed to encode event config: %w", err)
	}

	query := `
		UPDATE events SET
			name = $1,
			status = $2,
			competition_mode = $3,
			registration_start = $4,
			registration_end = $5,
			event_date = $6,
			course_id = $7,
			location = $8,
			description = $9,
			config = $10,
			has_handicap_ranking = $11
		WHERE id = $12`

	result, err := executor.ExecContext(ctx, query,
		e.Name, e.Status, e.CompetitionMode,
		e.RegistrationStart, e.RegistrationEnd, e.EventDate,
		e.CourseID, e.Location, e.Description, string(config), e.HasHandicapRanking,
		e.ID,
	)
	if err != nil {
		return r.handleEventError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateConfig(ctx context.Context, exec SQLExecutor, id string, config models.EventConfig) error {
	executor := r.getExecutor(exec)
	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode event config: %w", err)
	}

	query := `UPDATE events SET config = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, string(raw), id)
	if err != nil {
		return r.handleEventError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) handleEventError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "events_course_id_fkey":
			return ErrEventInvalidCourse
		case "events_association_id_fkey":
			return ErrEventInvalidAssociation
		}
	}
	return err
}
