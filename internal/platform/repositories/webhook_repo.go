package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hookreg/internal/platform/models"
)

const webhookColumns = `id, organization_id, url, send_payload, send_for_all_actions, headers, is_active, actions, created_at, updated_at`

// WebhookRepository stores subscriptions. Every read and write is keyed by
// organization id as well as webhook id; there is no unscoped accessor.
type WebhookRepository struct {
	db *sql.DB
	q  querier
}

func NewWebhookRepository(db *sql.DB) *WebhookRepository {
	return &WebhookRepository{db: db, q: db}
}

func (r *WebhookRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

// WithTx returns a repository whose statements run inside tx.
func (r *WebhookRepository) WithTx(tx *sql.Tx) *WebhookRepository {
	return &WebhookRepository{db: r.db, q: tx}
}

func (r *WebhookRepository) Create(ctx context.Context, webhook *models.Webhook) error {
	now := time.Now().Unix()
	webhook.ID = "wh_" + uuid.New().String()
	webhook.CreatedAt = now
	webhook.UpdatedAt = now

	headersJSON, actionsJSON, err := encodeWebhook(webhook)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO webhooks (`+webhookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, webhook.ID, webhook.OrganizationID, webhook.URL, webhook.SendPayload, webhook.SendForAllActions,
		headersJSON, webhook.IsActive, actionsJSON, webhook.CreatedAt, webhook.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting webhook: %w", err)
	}
	return nil
}

func (r *WebhookRepository) GetByID(ctx context.Context, orgID, id string) (*models.Webhook, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+webhookColumns+`
		FROM webhooks WHERE id = ? AND organization_id = ?
	`, id, orgID)

	w, err := scanWebhook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

// ListByOrg returns the organization's webhooks in creation order.
func (r *WebhookRepository) ListByOrg(ctx context.Context, orgID string) ([]*models.Webhook, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+webhookColumns+`
		FROM webhooks WHERE organization_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("listing webhooks: %w", err)
	}
	defer rows.Close()

	webhooks := []*models.Webhook{}
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

// Update writes every mutable column. organization_id and created_at are
// never part of the SET clause.
func (r *WebhookRepository) Update(ctx context.Context, webhook *models.Webhook) error {
	webhook.UpdatedAt = time.Now().Unix()

	headersJSON, actionsJSON, err := encodeWebhook(webhook)
	if err != nil {
		return err
	}

	result, err := r.q.ExecContext(ctx, `
		UPDATE webhooks
		SET url = ?, send_payload = ?, send_for_all_actions = ?, headers = ?, is_active = ?, actions = ?, updated_at = ?
		WHERE id = ? AND organization_id = ?
	`, webhook.URL, webhook.SendPayload, webhook.SendForAllActions, headersJSON, webhook.IsActive, actionsJSON,
		webhook.UpdatedAt, webhook.ID, webhook.OrganizationID)
	if err != nil {
		return fmt.Errorf("updating webhook: %w", err)
	}
	return requireAffected(result)
}

func (r *WebhookRepository) Delete(ctx context.Context, orgID, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM webhooks WHERE id = ? AND organization_id = ?`, id, orgID)
	if err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeWebhook(w *models.Webhook) (string, string, error) {
	headers := w.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	actions := w.Actions
	if actions == nil {
		actions = []string{}
	}

	headersJSON, err := json.Marshal(headers)
	if err != nil {
		return "", "", fmt.Errorf("marshaling headers: %w", err)
	}
	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return "", "", fmt.Errorf("marshaling actions: %w", err)
	}
	return string(headersJSON), string(actionsJSON), nil
}

func scanWebhook(s scanner) (*models.Webhook, error) {
	var w models.Webhook
	var headersStr, actionsStr string

	err := s.Scan(&w.ID, &w.OrganizationID, &w.URL, &w.SendPayload, &w.SendForAllActions,
		&headersStr, &w.IsActive, &actionsStr, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(headersStr), &w.Headers); err != nil || w.Headers == nil {
		w.Headers = map[string]string{}
	}
	if err := json.Unmarshal([]byte(actionsStr), &w.Actions); err != nil || w.Actions == nil {
		w.Actions = []string{}
	}

	return &w, nil
}
