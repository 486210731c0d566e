package subscriptions

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"hookreg/internal/platform/audit"
	"hookreg/internal/platform/models"
	"hookreg/internal/platform/repositories"
)

const (
	auditCreated  = "webhook.created"
	auditReplaced = "webhook.replaced"
	auditUpdated  = "webhook.updated"
	auditDeleted  = "webhook.deleted"
)

// Service is the subscription API. Every method resolves the caller's
// organization first and only ever touches that organization's rows.
type Service struct {
	repo      *repositories.WebhookRepository
	scope     *Scope
	validator *Validator
	audit     *audit.Logger
}

// NewService wires the store, validator and an optional audit logger.
func NewService(repo *repositories.WebhookRepository, v *Validator, auditLogger *audit.Logger) *Service {
	return &Service{
		repo:      repo,
		scope:     NewScope(repo),
		validator: v,
		audit:     auditLogger,
	}
}

func (s *Service) List(ctx context.Context, caller *Caller) ([]*models.Webhook, error) {
	return s.scope.VisibleSet(ctx, caller)
}

func (s *Service) Get(ctx context.Context, caller *Caller, id string) (*models.Webhook, error) {
	return s.scope.Lookup(ctx, caller, id)
}

func (s *Service) Create(ctx context.Context, caller *Caller, in Input) (*models.Webhook, error) {
	if _, err := s.scope.Resolve(caller); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	w, err := s.scope.StampOwner(in.Webhook(), caller)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}

	log.Debug().Str("org_id", w.OrganizationID).Str("webhook_id", w.ID).Msg("webhook created")
	s.record(ctx, caller, auditCreated, w)
	return w, nil
}

// Replace overwrites every writable field. Fields absent from in fall back
// to their defaults; id, owner and created_at are kept.
func (s *Service) Replace(ctx context.Context, caller *Caller, id string, in Input) (*models.Webhook, error) {
	return s.mutate(ctx, caller, id, auditReplaced, func(*models.Webhook) Input { return in })
}

// Update merges the supplied fields of p into the stored webhook.
func (s *Service) Update(ctx context.Context, caller *Caller, id string, p Patch) (*models.Webhook, error) {
	return s.mutate(ctx, caller, id, auditUpdated, func(existing *models.Webhook) Input {
		return p.apply(inputFrom(existing))
	})
}

func (s *Service) mutate(ctx context.Context, caller *Caller, id, action string, next func(*models.Webhook) Input) (*models.Webhook, error) {
	if _, err := s.scope.Resolve(caller); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := s.scope.WithTx(tx).Lookup(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	in := next(existing)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	w := in.Webhook()
	w.ID = existing.ID
	w.OrganizationID = existing.OrganizationID
	w.CreatedAt = existing.CreatedAt

	if err := s.repo.WithTx(tx).Update(ctx, w); err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing webhook update: %w", err)
	}

	s.record(ctx, caller, action, w)
	return w, nil
}

func (s *Service) Delete(ctx context.Context, caller *Caller, id string) error {
	orgID, err := s.scope.Resolve(caller)
	if err != nil {
		return err
	}
	if id == "" {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return translate(err)
	}

	log.Debug().Str("org_id", orgID).Str("webhook_id", id).Msg("webhook deleted")
	s.record(ctx, caller, auditDeleted, &models.Webhook{ID: id, OrganizationID: orgID})
	return nil
}

func (s *Service) record(ctx context.Context, caller *Caller, action string, w *models.Webhook) {
	if s.audit == nil {
		return
	}
	meta := map[string]interface{}{}
	if w.URL != "" {
		meta["url"] = w.URL
	}
	s.audit.Log(ctx, audit.AuditLog{
		OrganizationID: w.OrganizationID,
		UserID:         caller.UserID,
		Action:         action,
		ResourceType:   "webhook",
		ResourceID:     w.ID,
		Metadata:       meta,
	})
}
