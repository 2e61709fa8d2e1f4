package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// FetchMessageHistory returns the full message history for a ride.
func (c *Client) FetchMessageHistory(ctx context.Context, rideID string) ([]ChatMessage, error) {
	var out struct {
		Messages []ChatMessage `json:"messages"`
	}
	path := "/api/messaging/history?rideId=" + url.QueryEscape(rideID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SendMessageRequest is the outgoing message payload.
type SendMessageRequest struct {
	RideID      string `json:"rideId"`
	Message     string `json:"message"`
	MessageType string `json:"messageType"`
}

// SendMessage posts a message and returns the server-echoed record, which
// carries the authoritative id.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*ChatMessage, error) {
	if req.MessageType == "" {
		req.MessageType = "text"
	}
	var out struct {
		Success bool        `json:"success"`
		Message ChatMessage `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/messaging/send", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("send message: server rejected")
	}
	return &out.Message, nil
}
