// Package smslocal sends OTPs through the SMS Local bulk API OTP route.
// See https://www.smslocal.com/dev/bulkV2.
package smslocal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/phoneverify"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "https://www.smslocal.com/dev/bulkV2"

	defaultTimeout = 15 * time.Second
	providerName   = "smslocal"
)

var errMissingAPIKey = errors.New("sms: API key not configured")

type Client struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

// NewClient returns a client for apiKey. Empty baseURL selects DefaultBaseURL.
func NewClient(apiKey, baseURL, sender string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// LookupCarrier always reports a deliverable number; SMS Local has no lookup API.
func (c *Client) LookupCarrier(context.Context, string) (phoneverify.CarrierInfo, error) {
	return phoneverify.CarrierInfo{Name: providerName, Type: "mobile"}, nil
}

type sendResponse struct {
	Return    bool     `json:"return"`
	RequestID string   `json:"request_id"`
	Message   []string `json:"message"`
}

// Send posts the code to the OTP route; the provider renders its own template,
// so msg.Body is only echoed in the receipt.
func (c *Client) Send(ctx context.Context, msg phoneverify.Message) (*phoneverify.DeliveryReceipt, error) {
	if c.APIKey == "" {
		return nil, errMissingAPIKey
	}

	payload := map[string]any{
		"route":     "otp",
		"numbers":   strings.TrimPrefix(msg.To, "+"),
		"variables": msg.Code,
	}
	if c.Sender != "" {
		payload["sender_id"] = c.Sender
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(body))
	}

	var out sendResponse
	_ = json.Unmarshal(body, &out)
	sid := out.RequestID
	if sid == "" {
		sid = uuid.NewString()
	}

	return &phoneverify.DeliveryReceipt{
		SID:         sid,
		Provider:    providerName,
		Status:      "sent",
		To:          msg.To,
		From:        c.Sender,
		Body:        msg.Body,
		DateCreated: time.Now().UTC(),
	}, nil
}

var _ phoneverify.MessagingGateway = (*Client)(nil)
