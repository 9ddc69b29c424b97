package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/golf-association/models"
	"github.com/lib/pq"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	IsAssociationAdmin(ctx context.Context, userID string) (bool, error)
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

const selectProfileColumns = `
		SELECT id, first_name, last_name, category, role, association_id, default_association_id
		FROM profiles`

func scanProfile(scan func(dest ...interface{}) error, p *models.Profile) error {
	return scan(&p.ID, &p.FirstName, &p.LastName, &p.Category, &p.Role, &p.AssociationID, &p.DefaultAssociationID)
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := selectProfileColumns + `
		WHERE id = $1`

	p := &models.Profile{}
	if err := scanProfile(r.db.QueryRowContext(ctx, query, id).Scan, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetByIDs loads the profiles that exist among ids.
func (r *postgresProfileRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	query := selectProfileColumns + `
		WHERE id::text = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Profile
		if scanErr := scanProfile(rows.Scan, &p); scanErr != nil {
			return nil, scanErr
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// IsAssociationAdmin reports whether userID administers any association.
func (r *postgresProfileRepository) IsAssociationAdmin(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM associations WHERE admin_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check association admin: %w", err)
	}
	return exists, nil
}
