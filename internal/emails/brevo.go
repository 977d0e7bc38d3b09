package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// OTP purposes. Each gets its own subject line and Redis namespace.
const (
	PurposeRegistration   = "registration"
	PurposeReset          = "reset"
	PurposePasswordChange = "password_change"
	PurposeEmailChange    = "email_change"
)

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Sender delivers verification codes. Nil = no-op (dev without API key).
type Sender interface {
	SendOTP(ctx context.Context, toEmail, code, purpose string) error
}

// BrevoClient sends emails via the Brevo (Sendinblue) API.
// Env: SENDINBLUE_API_KEY, MAIL_FROM.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@cattletrack.app"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "CattleTrack"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendOTP sends a one-time verification code. The code expires after
// 10 minutes; the expiry text must stay in sync with the store TTL.
func (c *BrevoClient) SendOTP(ctx context.Context, toEmail, code, purpose string) error {
	if c.APIKey == "" {
		return nil
	}
	return c.send(ctx, toEmail, otpSubject(purpose), EmailLayout(otpContent(code, purpose)))
}

func otpSubject(purpose string) string {
	switch purpose {
	case PurposeReset:
		return "Reset your CattleTrack password"
	case PurposePasswordChange:
		return "Confirm your password change"
	case PurposeEmailChange:
		return "Confirm your new email address"
	default:
		return "Verify your CattleTrack account"
	}
}

func otpContent(code, purpose string) string {
	intro := "Use the code below to verify your email address and activate your account."
	switch purpose {
	case PurposeReset:
		intro = "Use the code below to reset your password. If you did not request a reset, you can ignore this email."
	case PurposePasswordChange:
		intro = "Use the code below to confirm your password change."
	case PurposeEmailChange:
		intro = "Use the code below to confirm your new email address."
	}
	return fmt.Sprintf(`
    <h1>Your verification code</h1>
    <p>%s</p>
    <center>
      <span class="otp-code">%s</span>
    </center>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      This code expires in 10 minutes. Never share it with anyone.
    </p>
    <p>— The CattleTrack Team</p>
`, intro, EscapeHTML(code))
}
