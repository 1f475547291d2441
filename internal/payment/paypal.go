package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/payhive/internal/models"
)

const (
	PayPalSandboxURL    = "https://api-m.sandbox.paypal.com"
	PayPalProductionURL = "https://api-m.paypal.com"
)

var (
	paypalFeeRate    = decimal.RequireFromString("0.029")
	paypalFixedFee   = decimal.RequireFromString("0.30")
	errNoCredentials = errors.New("paypal client credentials are not configured")
)

// PayPalFee estimates the processor fee: 2.9% + 0.30, never below 0.30.
func PayPalFee(amount decimal.Decimal) decimal.Decimal {
	fee := amount.Mul(paypalFeeRate).Add(paypalFixedFee)
	return decimal.Max(fee, paypalFixedFee).Round(2)
}

// PayPalConfig configures the PayPal rail.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	// BaseURL defaults to the sandbox API.
	BaseURL  string
	Currency string
	// BrandName is shown to the payer on the approval page.
	BrandName  string
	ReturnURL  string
	CancelURL  string
	HTTPClient *http.Client
}

// PayPalGateway settles by creating a PayPal checkout order payable to the
// creditor's email. The debtor approves the order on PayPal, so a fresh
// order is pending.
type PayPalGateway struct {
	cfg    PayPalConfig
	client *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ Gateway = (*PayPalGateway)(nil)

// NewPayPalGateway creates a PayPal gateway.
func NewPayPalGateway(cfg PayPalConfig) *PayPalGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = PayPalSandboxURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.BrandName == "" {
		cfg.BrandName = "PayHive"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PayPalGateway{cfg: cfg, client: client}
}

func (g *PayPalGateway) Rail() models.Rail { return models.RailPayPal }

// Supports requires both parties to have an email address.
func (g *PayPalGateway) Supports(from, to Identity) bool {
	return from.Email != "" && to.Email != ""
}

// Healthy reports whether credentials are configured.
func (g *PayPalGateway) Healthy(ctx context.Context) error {
	if g.cfg.ClientID == "" || g.cfg.ClientSecret == "" {
		return errNoCredentials
	}
	return nil
}

func (g *PayPalGateway) EstimateFee(amount decimal.Decimal) decimal.Decimal {
	return PayPalFee(amount)
}

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id,omitempty"`
	Amount      paypalAmount `json:"amount"`
	Description string       `json:"description,omitempty"`
	Payee       struct {
		EmailAddress string `json:"email_address"`
	} `json:"payee"`
}

type paypalOrderRequest struct {
	Intent             string               `json:"intent"`
	PurchaseUnits      []paypalPurchaseUnit `json:"purchase_units"`
	ApplicationContext struct {
		BrandName   string `json:"brand_name"`
		LandingPage string `json:"landing_page"`
		UserAction  string `json:"user_action"`
		ReturnURL   string `json:"return_url,omitempty"`
		CancelURL   string `json:"cancel_url,omitempty"`
	} `json:"application_context"`
}

type paypalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

type paypalErrorBody struct {
	Name             string `json:"name"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Transfer creates a checkout order for the settlement amount.
func (g *PayPalGateway) Transfer(ctx context.Context, req TransferRequest) (RailResult, error) {
	if !g.Supports(req.From, req.To) {
		return nil, NewGatewayError(KindInvalidAddress, "both parties need a PayPal email address", nil)
	}

	body := paypalOrderRequest{Intent: "CAPTURE"}
	unit := paypalPurchaseUnit{
		ReferenceID: req.GroupID,
		Amount: paypalAmount{
			CurrencyCode: g.cfg.Currency,
			Value:        req.Amount.StringFixed(2),
		},
		Description: req.Description,
	}
	unit.Payee.EmailAddress = req.To.Email
	body.PurchaseUnits = []paypalPurchaseUnit{unit}
	body.ApplicationContext.BrandName = g.cfg.BrandName
	body.ApplicationContext.LandingPage = "LOGIN"
	body.ApplicationContext.UserAction = "PAY_NOW"
	body.ApplicationContext.ReturnURL = g.cfg.ReturnURL
	body.ApplicationContext.CancelURL = g.cfg.CancelURL

	var order paypalOrder
	if err := g.do(ctx, http.MethodPost, "/v2/checkout/orders", req.RequestID, body, &order); err != nil {
		return nil, err
	}

	result := PayPalResult{
		OrderID:     order.ID,
		OrderStatus: order.Status,
		Fee:         PayPalFee(req.Amount),
	}
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			result.ApproveURL = link.Href
		}
	}
	return result, nil
}

// Status fetches the order and maps its status.
func (g *PayPalGateway) Status(ctx context.Context, transactionID string) (models.PaymentStatus, error) {
	var order paypalOrder
	if err := g.do(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(transactionID), "", nil, &order); err != nil {
		return "", err
	}
	return paypalStatus(order.Status), nil
}

func paypalStatus(orderStatus string) models.PaymentStatus {
	switch strings.ToUpper(orderStatus) {
	case "COMPLETED":
		return models.PaymentStatusCompleted
	case "VOIDED":
		return models.PaymentStatusFailed
	default:
		return models.PaymentStatusPending
	}
}

func (g *PayPalGateway) accessToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" && time.Now().Before(g.tokenExpiry) {
		return g.token, nil
	}
	if err := g.Healthy(ctx); err != nil {
		return "", NewGatewayError(KindUnavailable, err.Error(), err)
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(g.cfg.ClientID, g.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token paypalTokenResponse
	if _, err := g.send(req, &token); err != nil {
		return "", err
	}

	g.token = token.AccessToken
	// Refresh a minute early so a token never expires mid-request.
	g.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)
	return g.token, nil
}

// do sends an authenticated API call. A non-empty requestID is sent as
// PayPal-Request-Id, which PayPal uses to answer a repeated POST with the
// original result instead of creating a second order.
func (g *PayPalGateway) do(ctx context.Context, method, path, requestID string, in, out any) error {
	token, err := g.accessToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode paypal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build paypal request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	status, err := g.send(req, out)
	if status == http.StatusUnauthorized {
		g.mu.Lock()
		g.token = ""
		g.mu.Unlock()
	}
	return err
}

// send executes req and decodes a 2xx JSON body into out.
// Non-2xx answers become processor errors carrying PayPal's message.
func (g *PayPalGateway) send(req *http.Request, out any) (int, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, NewGatewayError(KindNetwork, "failed to read paypal response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var perr paypalErrorBody
		_ = json.Unmarshal(data, &perr)
		details := perr.Message
		if details == "" {
			details = perr.ErrorDescription
		}
		if details == "" {
			details = "Unknown PayPal error"
		}
		return resp.StatusCode, NewGatewayError(KindProcessor, details,
			fmt.Errorf("paypal %s %s: status %d", req.Method, req.URL.Path, resp.StatusCode))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, NewGatewayError(KindProcessor, "unexpected paypal response", err)
	}
	return resp.StatusCode, nil
}
