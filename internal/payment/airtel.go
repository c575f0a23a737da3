// Package payment wraps the Airtel Money web endpoint behind a typed
// adapter. The gateway has no structured status contract; success is a
// substring in the plain-text body, and anything else (including
// transport errors and timeouts) is a payment failure.
package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gytx-dev/tombola-api/internal/config"
)

const successMarker = "successfully processed"

var ErrPaymentFailed = errors.New("payment failed")

// Result carries the reference quoted in logs and stored on the
// participant row, for manual reconciliation of charged-but-unrecorded
// payments.
type Result struct {
	Reference string `json:"reference"`
}

type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(conf *config.PaymentConfig) *Client {
	timeout := time.Duration(conf.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint: conf.Endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// Pay charges the given amount against the given mobile-money number.
// The returned Result holds the reconciliation reference even when the
// payment fails.
func (c *Client) Pay(ctx context.Context, amount int, phone string) (Result, error) {
	result := Result{Reference: uuid.NewString()}

	form := url.Values{}
	form.Set("amount", strconv.Itoa(amount))
	form.Set("numero", digitsOnly(phone))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return result, fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Warn("payment gateway unreachable",
			zap.String("reference", result.Reference),
			zap.Error(err),
		)

		return result, ErrPaymentFailed
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		zap.L().Warn("payment gateway body unreadable",
			zap.String("reference", result.Reference),
			zap.Error(err),
		)

		return result, ErrPaymentFailed
	}

	if !strings.Contains(string(body), successMarker) {
		zap.L().Info("payment declined",
			zap.String("reference", result.Reference),
			zap.Int("amount", amount),
		)

		return result, ErrPaymentFailed
	}

	zap.L().Info("payment accepted",
		zap.String("reference", result.Reference),
		zap.Int("amount", amount),
	)

	return result, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}
