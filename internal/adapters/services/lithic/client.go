// Package lithic talks to the Lithic sandbox issuing API: account holders,
// virtual cards and simulated authorizations.
package lithic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
	"github.com/solux-cash/solux-backend/pkg/logging"
	"github.com/solux-cash/solux-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("solux/adapters/services/lithic")
	logger = otelslog.NewLogger("solux/adapters/services/lithic")
)

const (
	DefaultBaseURL = "https://sandbox.lithic.com/v1"

	cardMemo          = "Solux Virtual Card"
	cardType          = "VIRTUAL"
	cardSpendLimit    = 1000000
	cardSpendDuration = "MONTHLY"

	// The sandbox enrolls holders KYC-exempt with a placeholder phone; there
	// is no real identity pipeline behind the wizard's capture steps.
	workflowKYCExempt  = "KYC_EXEMPT"
	kycExemptionType   = "AUTHORIZED_USER"
	placeholderPhone   = "+10000000000"
	defaultCountryCode = "USA"
)

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	tracer  trace.Tracer
	logger  *slog.Logger
}

type ClientArgs struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Tracer     trace.Tracer
	Logger     *slog.Logger
}

func NewClient(args ClientArgs) *Client {
	if args.BaseURL == "" {
		args.BaseURL = DefaultBaseURL
	}
	if args.HTTPClient == nil {
		args.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &Client{
		baseURL: args.BaseURL,
		apiKey:  args.APIKey,
		httpc:   args.HTTPClient,
		tracer:  args.Tracer,
		logger:  args.Logger,
	}
}

type addressPayload struct {
	Address1   string `json:"address1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type accountHolderRequest struct {
	Workflow         string         `json:"workflow"`
	TOSTimestamp     string         `json:"tos_timestamp"`
	KYCExemptionType string         `json:"kyc_exemption_type"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	Email            string         `json:"email"`
	DOB              string         `json:"dob"`
	PhoneNumber      string         `json:"phone_number"`
	Address          addressPayload `json:"address"`
}

type accountHolderResponse struct {
	Token        string `json:"token"`
	AccountToken string `json:"account_token"`
	Status       string `json:"status"`
}

type cardRequest struct {
	AccountToken       string `json:"account_token"`
	Type               string `json:"type"`
	Memo               string `json:"memo"`
	SpendLimit         int64  `json:"spend_limit"`
	SpendLimitDuration string `json:"spend_limit_duration"`
}

type cardResponse struct {
	Token    string `json:"token"`
	PAN      string `json:"pan"`
	LastFour string `json:"last_four"`
	ExpMonth string `json:"exp_month"`
	ExpYear  string `json:"exp_year"`
	State    string `json:"state"`
	Type     string `json:"type"`
}

type simulateAuthorizationRequest struct {
	CardToken  string `json:"card_token"`
	Amount     int64  `json:"amount"`
	Descriptor string `json:"descriptor"`
}

type simulateAuthorizationResponse struct {
	Token              string `json:"token"`
	DebuggingRequestID string `json:"debugging_request_id"`
}

// CreateAccountHolder enrolls a KYC-exempt individual and returns the token
// cards are issued under.
func (c *Client) CreateAccountHolder(ctx context.Context, p enrollment.Profile) (string, error) {
	ctx, span := c.tracer.Start(ctx, "lithic.CreateAccountHolder",
		trace.WithAttributes(attribute.String("email", logging.RedactEmail(p.Email))),
	)
	defer span.End()

	country := p.Address.Country
	if country == "" {
		country = defaultCountryCode
	}

	req := accountHolderRequest{
		Workflow:         workflowKYCExempt,
		TOSTimestamp:     time.Now().UTC().Format(time.RFC3339),
		KYCExemptionType: kycExemptionType,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Email:            p.Email,
		DOB:              p.DOB,
		PhoneNumber:      placeholderPhone,
		Address: addressPayload{
			Address1:   p.Address.Line1,
			City:       p.Address.City,
			State:      p.Address.State,
			PostalCode: p.Address.PostalCode,
			Country:    country,
		},
	}

	var resp accountHolderResponse
	if err := c.do(ctx, http.MethodPost, "/account_holders", req, &resp); err != nil {
		otelx.RecordSpanError(span, err, "account holder request failed")
		return "", err
	}

	// cards are created against the account, which may carry its own token
	accountToken := resp.AccountToken
	if accountToken == "" {
		accountToken = resp.Token
	}
	otelx.SetSpanAttrs(span, map[string]any{"lithic.account_token": accountToken})

	return accountToken, nil
}

// CreateCard issues a virtual card under accountToken with the standard
// Solux memo and monthly spend limit.
func (c *Client) CreateCard(ctx context.Context, accountToken string) (enrollment.CardDetails, error) {
	ctx, span := c.tracer.Start(ctx, "lithic.CreateCard",
		trace.WithAttributes(attribute.String("lithic.account_token", accountToken)),
	)
	defer span.End()

	req := cardRequest{
		AccountToken:       accountToken,
		Type:               cardType,
		Memo:               cardMemo,
		SpendLimit:         cardSpendLimit,
		SpendLimitDuration: cardSpendDuration,
	}

	var resp cardResponse
	if err := c.do(ctx, http.MethodPost, "/cards", req, &resp); err != nil {
		otelx.RecordSpanError(span, err, "card request failed")
		return enrollment.CardDetails{}, err
	}

	c.logger.InfoContext(ctx, "virtual card issued",
		slog.String("card_token", resp.Token),
		slog.String("pan", logging.RedactPAN(resp.PAN)),
	)

	return enrollment.CardDetails{
		Token:    resp.Token,
		LastFour: resp.LastFour,
		ExpMonth: resp.ExpMonth,
		ExpYear:  resp.ExpYear,
		State:    resp.State,
		Type:     resp.Type,
	}, nil
}

func (c *Client) SimulateAuthorization(ctx context.Context, cardToken string, amountCents int64, descriptor string) (enrollment.AuthorizationSimulation, error) {
	ctx, span := c.tracer.Start(ctx, "lithic.SimulateAuthorization",
		trace.WithAttributes(
			attribute.String("card_token", cardToken),
			attribute.Int64("amount_cents", amountCents),
		),
	)
	defer span.End()

	req := simulateAuthorizationRequest{
		CardToken:  cardToken,
		Amount:     amountCents,
		Descriptor: descriptor,
	}

	var resp simulateAuthorizationResponse
	if err := c.do(ctx, http.MethodPost, "/simulate/authorize", req, &resp); err != nil {
		otelx.RecordSpanError(span, err, "simulate authorization request failed")
		return enrollment.AuthorizationSimulation{}, err
	}

	return enrollment.AuthorizationSimulation{
		Token:              resp.Token,
		DebuggingRequestID: resp.DebuggingRequestID,
	}, nil
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Debug   string `json:"debugging_request_id"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("lithic: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("lithic: build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("lithic: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("lithic: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.asProviderError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("lithic: decode response: %w", err)
		}
	}
	return nil
}

// asProviderError keeps the provider's own wording so it can be surfaced to
// the holder untouched.
func (c *Client) asProviderError(status int, raw []byte) error {
	var apierr apiError
	_ = json.Unmarshal(raw, &apierr)

	msg := apierr.Message
	if msg == "" {
		msg = apierr.Error
	}
	if msg == "" {
		msg = string(bytes.TrimSpace(raw))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	return &enrollment.ProviderError{
		Status:  status,
		Code:    apierr.Debug,
		Message: msg,
	}
}
