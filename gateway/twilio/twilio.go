// Package twilio implements phoneverify.MessagingGateway with the official
// twilio-go SDK: Lookups v1 for carrier checks and Programmable Messaging for
// delivery.
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/phoneverify"
	twiliosdk "github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	twapi "github.com/twilio/twilio-go/rest/api/v2010"
	twlookups "github.com/twilio/twilio-go/rest/lookups/v1"
)

const providerName = "twilio"

var errMissingCredentials = errors.New("twilio: account sid and auth token are required")

// APIError is a Twilio error response. Error returns the provider message
// unchanged so it can be shown to clients.
type APIError struct {
	Status   int
	Code     int
	Message  string
	MoreInfo string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("twilio: request failed status=%d", e.Status)
}

// restAPI is the part of the SDK the gateway calls.
type restAPI interface {
	FetchPhoneNumber(phone string, params *twlookups.FetchPhoneNumberParams) (*twlookups.LookupsV1PhoneNumber, error)
	CreateMessage(params *twapi.CreateMessageParams) (*twapi.ApiV2010Message, error)
}

type sdkAPI struct {
	rest *twiliosdk.RestClient
}

func (s sdkAPI) FetchPhoneNumber(phone string, params *twlookups.FetchPhoneNumberParams) (*twlookups.LookupsV1PhoneNumber, error) {
	return s.rest.LookupsV1.FetchPhoneNumber(phone, params)
}

func (s sdkAPI) CreateMessage(params *twapi.CreateMessageParams) (*twapi.ApiV2010Message, error) {
	return s.rest.Api.CreateMessage(params)
}

// Client adapts the SDK to phoneverify.MessagingGateway. The SDK calls are
// not context aware; ctx is checked before each request.
type Client struct {
	api        restAPI
	configured bool
}

func NewClient(accountSID, authToken string) *Client {
	rest := twiliosdk.NewRestClientWithParams(twiliosdk.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Client{
		api:        sdkAPI{rest: rest},
		configured: accountSID != "" && authToken != "",
	}
}

type carrierFields struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	ErrorCode *int   `json:"error_code"`
}

// LookupCarrier asks Lookups v1 for carrier data. A carrier error code is a
// successful lookup of an undeliverable number, not an error.
func (c *Client) LookupCarrier(ctx context.Context, phone string) (phoneverify.CarrierInfo, error) {
	if err := c.precheck(ctx); err != nil {
		return phoneverify.CarrierInfo{}, err
	}

	params := &twlookups.FetchPhoneNumberParams{}
	params.SetType([]string{"carrier"})

	resp, err := c.api.FetchPhoneNumber(phone, params)
	if err != nil {
		return phoneverify.CarrierInfo{}, mapError(err)
	}

	var carrier carrierFields
	if resp != nil && resp.Carrier != nil {
		// The SDK leaves carrier untyped; round-trip it through JSON.
		raw, err := json.Marshal(resp.Carrier)
		if err != nil {
			return phoneverify.CarrierInfo{}, fmt.Errorf("twilio: carrier: %w", err)
		}
		if err := json.Unmarshal(raw, &carrier); err != nil {
			return phoneverify.CarrierInfo{}, fmt.Errorf("twilio: carrier: %w", err)
		}
	}

	return phoneverify.CarrierInfo{
		Name:      carrier.Name,
		Type:      carrier.Type,
		ErrorCode: carrier.ErrorCode,
	}, nil
}

// Send creates a message. WhatsApp addresses both ends as "whatsapp:<n>";
// SMS sends to "+<n>" from the bare sender number.
func (c *Client) Send(ctx context.Context, msg phoneverify.Message) (*phoneverify.DeliveryReceipt, error) {
	if err := c.precheck(ctx); err != nil {
		return nil, err
	}

	from, to := Address(msg.Channel, msg.From, msg.To)
	params := &twapi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(msg.Body)

	resp, err := c.api.CreateMessage(params)
	if err != nil {
		return nil, mapError(err)
	}
	if resp == nil {
		return nil, errors.New("twilio: empty message response")
	}

	created, _ := time.Parse(time.RFC1123Z, deref(resp.DateCreated))
	return &phoneverify.DeliveryReceipt{
		SID:          deref(resp.Sid),
		Provider:     providerName,
		Status:       deref(resp.Status),
		To:           deref(resp.To),
		From:         deref(resp.From),
		Body:         deref(resp.Body),
		DateCreated:  created,
		ErrorCode:    resp.ErrorCode,
		ErrorMessage: resp.ErrorMessage,
	}, nil
}

// Address returns the From and To values Twilio expects for channel.
func Address(channel phoneverify.Channel, from, to string) (string, string) {
	if channel == phoneverify.ChannelSMS {
		return from, "+" + strings.TrimPrefix(to, "+")
	}
	return "whatsapp:" + from, "whatsapp:" + to
}

func (c *Client) precheck(ctx context.Context) error {
	if !c.configured {
		return errMissingCredentials
	}
	return ctx.Err()
}

func mapError(err error) error {
	var restErr *twclient.TwilioRestError
	if errors.As(err, &restErr) {
		return &APIError{
			Status:   restErr.Status,
			Code:     restErr.Code,
			Message:  restErr.Message,
			MoreInfo: restErr.MoreInfo,
		}
	}
	return fmt.Errorf("twilio: %w", err)
}

func deref[T ~string](p *T) string {
	if p == nil {
		return ""
	}
	return string(*p)
}

var _ phoneverify.MessagingGateway = (*Client)(nil)
