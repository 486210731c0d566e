package models

// Webhook is a subscription owned by exactly one organization.
type Webhook struct {
	ID                string            `json:"id"`
	OrganizationID    string            `json:"organization"`
	URL               string            `json:"url"`
	SendPayload       bool              `json:"send_payload"`
	SendForAllActions bool              `json:"send_for_all_actions"`
	Headers           map[string]string `json:"headers"` // JSON object in DB
	IsActive          bool              `json:"is_active"`
	Actions           []string          `json:"actions"` // JSON array in DB
	CreatedAt         int64             `json:"created_at"`
	UpdatedAt         int64             `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate headers and actions
// without touching the original.
func (w *Webhook) Clone() *Webhook {
	c := *w
	if w.Headers != nil {
		c.Headers = make(map[string]string, len(w.Headers))
		for k, v := range w.Headers {
			c.Headers[k] = v
		}
	}
	if w.Actions != nil {
		c.Actions = append([]string(nil), w.Actions...)
	}
	return &c
}
