package ddn

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// AuditEntry is one EMF audit log line for a tenant domain.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
}

// CreateDomain creates an EMF tenant isolation domain and returns its id.
// Isolation level defaults to strict.
func (c *Client) CreateDomain(ctx context.Context, name string, vlanID int, networkSegment, isolationLevel string) (string, error) {
	if isolationLevel == "" {
		isolationLevel = "strict"
	}
	body := map[string]any{
		"domain_name":     name,
		"vlan_id":         vlanID,
		"isolation_level": isolationLevel,
		"network_segment": networkSegment,
	}
	var out struct {
		DomainID string `json:"domain_id"`
	}
	if err := c.post(ctx, c.eps.EMF+"/api/v1/domains/create", body, &out, http.StatusCreated); err != nil {
		return "", err
	}
	return out.DomainID, nil
}

// AuditLogs fetches EMF audit entries for a tenant domain over the trailing
// window.
func (c *Client) AuditLogs(ctx context.Context, tenantDomain string, window time.Duration) ([]AuditEntry, error) {
	if window <= 0 {
		window = 24 * time.Hour
	}
	now := time.Now().UTC()

	q := url.Values{}
	q.Set("tenant_domain", tenantDomain)
	q.Set("start_time", now.Add(-window).Format(time.RFC3339))
	q.Set("end_time", now.Format(time.RFC3339))

	var out struct {
		AuditEntries []AuditEntry `json:"audit_entries"`
	}
	if err := c.get(ctx, c.eps.EMF+"/api/v1/audit/logs?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.AuditEntries, nil
}
