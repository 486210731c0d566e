package repositories

import (
	"context"
	"database/sql"
	"errors"

	"hookreg/internal/platform/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (id, slug, name, created_at)
		VALUES (?, ?, ?, ?)
	`, org.ID, org.Slug, org.Name, org.CreatedAt)
	return err
}

// GetByID returns nil, nil when the organization does not exist.
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, slug, name, created_at
		FROM organizations WHERE id = ?
	`, id).Scan(&org.ID, &org.Slug, &org.Name, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}
