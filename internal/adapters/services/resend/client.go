// Package resend dispatches transactional mail through the Resend HTTP API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/solux-cash/solux-backend/internal/domain/valueobject/mails"
	"github.com/solux-cash/solux-backend/pkg/logging"
	"github.com/solux-cash/solux-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("solux/adapters/services/resend")
	logger = otelslog.NewLogger("solux/adapters/services/resend")
)

const (
	DefaultBaseURL = "https://api.resend.com"

	codeSubject = "Solux - Your Login Code"
)

var codeTemplate = template.Must(template.New("verification_code").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 40px 20px;">
  <h1 style="color: #000; font-size: 28px; margin-bottom: 10px;">SOLUX</h1>
  <p style="color: #3b82f6; font-size: 12px; letter-spacing: 2px; margin-bottom: 30px;">THE NEW STANDARD OF CREDIT</p>
  <p style="color: #333; font-size: 16px; margin-bottom: 20px;">Your verification code is:</p>
  <div style="background: #f5f5f5; border-radius: 12px; padding: 30px; text-align: center; margin-bottom: 30px;">
    <span style="font-size: 36px; font-weight: bold; letter-spacing: 8px; color: #000;">{{.Code}}</span>
  </div>
  <p style="color: #666; font-size: 14px;">This code will expire in 10 minutes.</p>
  <p style="color: #666; font-size: 14px;">If you didn't request this code, please ignore this email.</p>
</div>
`))

type Client struct {
	baseURL string
	apiKey  string
	from    string
	httpc   *http.Client
	tracer  trace.Tracer
	logger  *slog.Logger
}

type ClientArgs struct {
	BaseURL    string
	APIKey     string
	From       string
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
		from:    args.From,
		httpc:   args.HTTPClient,
		tracer:  args.Tracer,
		logger:  args.Logger,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (c *Client) SendMail(ctx context.Context, payload mails.Payload) error {
	ctx, span := c.tracer.Start(ctx, "resend.SendMail",
		trace.WithAttributes(
			attribute.String("mail.to", logging.RedactEmail(payload.To)),
			attribute.String("mail.subject", payload.Subject),
		),
	)
	defer span.End()

	req := sendRequest{
		From:    c.from,
		To:      []string{payload.To},
		Subject: payload.Subject,
		HTML:    payload.HTML,
		Text:    payload.Text,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("resend: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("resend: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		otelx.RecordSpanError(span, err, "mail request failed")
		return fmt.Errorf("resend: send mail: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("resend: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apierr apiError
		_ = json.Unmarshal(raw, &apierr)
		msg := apierr.Message
		if msg == "" {
			msg = string(bytes.TrimSpace(raw))
		}
		err := fmt.Errorf("resend: %s (status %d)", msg, resp.StatusCode)
		otelx.RecordSpanError(span, err, "mail rejected")
		return err
	}

	var sent sendResponse
	_ = json.Unmarshal(raw, &sent)
	c.logger.InfoContext(ctx, "mail dispatched",
		slog.String("mail.id", sent.ID),
		slog.String("mail.to", logging.RedactEmail(payload.To)),
	)

	return nil
}

// SendVerificationCode renders the login code mail and dispatches it.
func (c *Client) SendVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	var buf bytes.Buffer
	if err := codeTemplate.Execute(&buf, struct{ Code string }{Code: code}); err != nil {
		return fmt.Errorf("resend: render code template: %w", err)
	}

	return c.SendMail(ctx, mails.Payload{
		To:      email,
		Subject: codeSubject,
		HTML:    buf.String(),
	})
}
