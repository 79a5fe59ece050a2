package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/config"
)

// statusOK is the in-body success code used by the carrier API.
const statusOK = 1

// Client is a stateless HTTP client for the external carrier API. It performs
// no retries: one call is one attempt, callers decide what to do on failure.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.Courier, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) CreateShipment(ctx context.Context, req BookingRequest) (*BookingResponse, error) {
	const op = "create_shipment"

	req.Username = c.username
	req.Password = c.password

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Op: op, Message: "encode booking request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bookings", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: op, Message: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp BookingResponse
	if err := c.do(op, httpReq, &resp); err != nil {
		return nil, err
	}
	if resp.Status != statusOK || resp.ConsignmentNo == "" {
		return nil, &Error{Op: op, Message: carrierMessage(resp.Message)}
	}
	return &resp, nil
}

func (c *Client) TrackShipment(ctx context.Context, referenceNo string) (*TrackResponse, error) {
	const op = "track_shipment"

	q := url.Values{}
	q.Set("username", c.username)
	q.Set("password", c.password)
	q.Set("refno", referenceNo)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/track?"+q.Encode(), nil)
	if err != nil {
		return nil, &Error{Op: op, Message: "build request", Err: err}
	}

	var resp TrackResponse
	if err := c.do(op, httpReq, &resp); err != nil {
		return nil, err
	}
	if resp.Status != statusOK {
		return nil, &Error{Op: op, Message: "carrier rejected tracking request"}
	}
	return &resp, nil
}

func (c *Client) CancelShipment(ctx context.Context, consignmentNo string) (*CancelResponse, error) {
	const op = "cancel_shipment"

	q := url.Values{}
	q.Set("username", c.username)
	q.Set("password", c.password)
	q.Set("cnno", consignmentNo)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/cancel?"+q.Encode(), nil)
	if err != nil {
		return nil, &Error{Op: op, Message: "build request", Err: err}
	}

	var resp CancelResponse
	if err := c.do(op, httpReq, &resp); err != nil {
		return nil, err
	}
	if resp.Status != statusOK {
		return nil, &Error{Op: op, Message: carrierMessage(resp.Message)}
	}
	return &resp, nil
}

func (c *Client) GetPickupStatus(ctx context.Context, consignmentNo string) (*PickupStatusResponse, error) {
	const op = "get_pickup_status"

	q := url.Values{}
	q.Set("cnno", consignmentNo)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/pickup-status?"+q.Encode(), nil)
	if err != nil {
		return nil, &Error{Op: op, Message: "build request", Err: err}
	}

	var resp PickupStatusResponse
	if err := c.do(op, httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetPaymentDetails(ctx context.Context, consignmentNo string) (*PaymentDetailsResponse, error) {
	const op = "get_payment_details"

	q := url.Values{}
	q.Set("cnno", consignmentNo)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/payment-details?"+q.Encode(), nil)
	if err != nil {
		return nil, &Error{Op: op, Message: "build request", Err: err}
	}

	var resp PaymentDetailsResponse
	if err := c.do(op, httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCities is a best-effort reference-data lookup: address validation works
// with an empty list, so failures are logged and swallowed.
func (c *Client) GetCities(ctx context.Context) ([]City, error) {
	const op = "get_cities"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/cities", nil)
	if err != nil {
		c.logger.Warn("courier city lookup failed", zap.Error(err))
		return nil, nil
	}

	var resp cityListResponse
	if err := c.do(op, httpReq, &resp); err != nil {
		c.logger.Warn("courier city lookup failed", zap.Error(err))
		return nil, nil
	}
	return resp.Cities, nil
}

func (c *Client) do(op string, req *http.Request, dest interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status %s", resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

func carrierMessage(msg string) string {
	if msg == "" {
		return "carrier rejected the request"
	}
	return msg
}
