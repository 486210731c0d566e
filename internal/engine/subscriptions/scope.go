package subscriptions

import (
	"context"
	"database/sql"

	"hookreg/internal/platform/models"
	"hookreg/internal/platform/repositories"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID         string
	OrganizationID string
}

// Scope confines store access to the caller's active organization.
type Scope struct {
	repo *repositories.WebhookRepository
}

func NewScope(repo *repositories.WebhookRepository) *Scope {
	return &Scope{repo: repo}
}

func (s *Scope) WithTx(tx *sql.Tx) *Scope {
	return &Scope{repo: s.repo.WithTx(tx)}
}

// Resolve returns the caller's active organization id.
func (s *Scope) Resolve(caller *Caller) (string, error) {
	if caller == nil || caller.UserID == "" || caller.OrganizationID == "" {
		return "", ErrUnauthorized
	}
	return caller.OrganizationID, nil
}

// VisibleSet returns exactly the webhooks owned by the caller's organization.
func (s *Scope) VisibleSet(ctx context.Context, caller *Caller) ([]*models.Webhook, error) {
	orgID, err := s.Resolve(caller)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOrg(ctx, orgID)
}

// Lookup finds id inside the visible set.
func (s *Scope) Lookup(ctx context.Context, caller *Caller, id string) (*models.Webhook, error) {
	orgID, err := s.Resolve(caller)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNotFound
	}
	w, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, translate(err)
	}
	return w, nil
}

// StampOwner sets the owner to the caller's organization, discarding
// whatever the input carried.
func (s *Scope) StampOwner(w *models.Webhook, caller *Caller) (*models.Webhook, error) {
	orgID, err := s.Resolve(caller)
	if err != nil {
		return nil, err
	}
	w.OrganizationID = orgID
	return w, nil
}
