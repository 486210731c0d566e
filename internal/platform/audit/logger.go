package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AuditLog struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organization_id"`
	UserID         string                 `json:"user_id"`
	Action         string                 `json:"action"`
	ResourceType   string                 `json:"resource_type"`
	ResourceID     string                 `json:"resource_id"`
	Metadata       map[string]interface{} `json:"metadata"`
	IPAddress      string                 `json:"ip_address"`
	UserAgent      string                 `json:"user_agent"`
	CreatedAt      int64                  `json:"created_at"`
}

type requestInfoKey struct{}

type requestInfo struct {
	ip string
	ua string
}

// WithRequest stores the client address and user agent of r in ctx so
// entries logged further down the call chain can carry them.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, requestInfo{ip: r.RemoteAddr, ua: r.UserAgent()})
}

type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Log records an entry. Failures are logged and swallowed: the audited
// operation has already been committed.
func (l *Logger) Log(ctx context.Context, entry AuditLog) {
	entry.ID = "audit_" + uuid.New().String()
	entry.CreatedAt = time.Now().Unix()
	entry.IPAddress = "unknown"
	entry.UserAgent = "unknown"
	if info, ok := ctx.Value(requestInfoKey{}).(requestInfo); ok {
		entry.IPAddress = info.ip
		entry.UserAgent = info.ua
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]interface{}{}
	}

	metaJSON, _ := json.Marshal(entry.Metadata)

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, organization_id, user_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.OrganizationID, entry.UserID, entry.Action, entry.ResourceType, entry.ResourceID,
		string(metaJSON), entry.IPAddress, entry.UserAgent, entry.CreatedAt)
	if err != nil {
		log.Error().Err(err).
			Str("org_id", entry.OrganizationID).
			Str("action", entry.Action).
			Str("resource_id", entry.ResourceID).
			Msg("failed to write audit log")
	}
}

// ListByOrg returns the newest entries of one organization first.
func (l *Logger) ListByOrg(ctx context.Context, orgID string, limit int) ([]AuditLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, organization_id, user_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at
		FROM audit_logs WHERE organization_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []AuditLog{}
	for rows.Next() {
		var e AuditLog
		var metaStr string
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.UserID, &e.Action, &e.ResourceType, &e.ResourceID,
			&metaStr, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metaStr), &e.Metadata); err != nil || e.Metadata == nil {
			e.Metadata = map[string]interface{}{}
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}
