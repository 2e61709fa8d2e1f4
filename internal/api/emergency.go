package api

import (
	"context"
	"net/http"
)

// SendEmergencyAlert delivers a safety alert to the driver's emergency
// contacts. Any failure is returned to the caller; the offline queue decides
// whether to defer.
func (c *Client) SendEmergencyAlert(ctx context.Context, payload AlertPayload) (*AlertResult, error) {
	body := struct {
		AlertPayload
		Bypass2FA bool   `json:"bypass2fa"`
		Priority  string `json:"priority"`
	}{AlertPayload: payload, Bypass2FA: true, Priority: "emergency"}

	var out AlertResult
	if err := c.do(ctx, http.MethodPost, "/api/emergency/admin/alert", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
