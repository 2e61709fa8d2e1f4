package api

import (
	"context"
	"net/http"
)

// FetchMyRides returns the authenticated user's rides. This is the only
// "push" signal available when the duplex channel is degraded: the
// notification synthesizer diffs successive snapshots of it.
func (c *Client) FetchMyRides(ctx context.Context) ([]RideSummary, error) {
	var out []RideSummary
	if err := c.do(ctx, http.MethodGet, "/rides/my-rides", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
