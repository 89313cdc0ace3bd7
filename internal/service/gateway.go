package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// GatewayConfig carries the external payment provider's connection
// settings. KeySecret doubles as the HMAC key for confirmation signatures.
type GatewayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

type httpGateway struct {
	cfg    GatewayConfig
	client *http.Client
}

// NewPaymentGateway returns the HTTP implementation of the payment-order
// collaborator. Every call is bounded by both the config timeout and the
// caller's context.
func NewPaymentGateway(cfg GatewayConfig) PaymentGateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &httpGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

func (g *httpGateway) CreateOrder(ctx context.Context, amount float64, receipt string) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   int64(math.Round(amount * 100)),
		Currency: "INR",
		Receipt:  receipt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("payment gateway returned %d: %s", resp.StatusCode, snippet)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("payment gateway response unparseable: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("payment gateway response missing order id")
	}
	return out.ID, nil
}
