package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"jollymart/pkg/utils"
)

type StripeConfig struct {
	SecretKey     string // sk_...
	WebhookSecret string // whsec_..., used by the webhook handler
	CallTimeout   time.Duration
	TestMode      bool // swap the real gateway for the local stub
}

// GatewayStatus is the normalized terminal/non-terminal state reported by
// the payment gateway for a transaction.
type GatewayStatus string

const (
	GatewayStatusSucceeded  GatewayStatus = "succeeded"
	GatewayStatusProcessing GatewayStatus = "processing"
	GatewayStatusFailed     GatewayStatus = "failed"
	GatewayStatusCanceled   GatewayStatus = "canceled"
)

func (s GatewayStatus) IsTerminal() bool {
	return s == GatewayStatusSucceeded || s == GatewayStatusFailed || s == GatewayStatusCanceled
}

// Intent is the gateway-side transaction as this service sees it.
type Intent struct {
	ID          string
	Status      GatewayStatus
	AmountMinor int64
	Currency    string
}

// GatewayClient wraps the external payment gateway. Both methods carry a
// bounded timeout; a timed-out call surfaces as ErrGatewayUnavailable and is
// never interpreted as a failed payment.
type GatewayClient interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, description string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

type stripeGateway struct {
	api     *client.API
	timeout time.Duration
}

func NewStripeGateway(cfg StripeConfig) (GatewayClient, error) {
	if cfg.TestMode {
		return NewTestGateway(), nil
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("missing stripe secret key")
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &stripeGateway{api: api, timeout: timeout}, nil
}

func (g *stripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency, description string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amountMinor),
		Currency:    stripe.String(strings.ToLower(currency)),
		Description: stripe.String(description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, mapGatewayError(err)
	}
	return fromStripeIntent(pi), nil
}

func (g *stripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, mapGatewayError(err)
	}
	return fromStripeIntent(pi), nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:          pi.ID,
		Status:      normalizeIntentStatus(pi),
		AmountMinor: pi.Amount,
		Currency:    strings.ToUpper(string(pi.Currency)),
	}
}

func normalizeIntentStatus(pi *stripe.PaymentIntent) GatewayStatus {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return GatewayStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return GatewayStatusCanceled
	default:
		// Stripe reports a failed attempt as requires_payment_method with
		// a last_payment_error attached, not as a distinct status.
		if pi.LastPaymentError != nil {
			return GatewayStatusFailed
		}
		return GatewayStatusProcessing
	}
}

// mapGatewayError keeps the transient/permanent distinction: network
// trouble, timeouts and gateway 5xx come back as ErrGatewayUnavailable so
// callers drop the attempt and let the next signal retry.
func mapGatewayError(err error) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		if sErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: %v", utils.ErrGatewayUnavailable, err)
		}
		return err
	}
	return fmt.Errorf("%w: %v", utils.ErrGatewayUnavailable, err)
}

// testGateway is the gate-flagged local stub: intents are held in memory and
// report succeeded on the first status read, so the full reconcile path can
// be exercised without gateway credentials.
type testGateway struct {
	mu      sync.Mutex
	intents map[string]*Intent
}

func NewTestGateway() GatewayClient {
	return &testGateway{intents: make(map[string]*Intent)}
}

func (g *testGateway) CreateIntent(ctx context.Context, amountMinor int64, currency, description string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent := &Intent{
		ID:          "test_pi_" + uuid.New().String(),
		Status:      GatewayStatusProcessing,
		AmountMinor: amountMinor,
		Currency:    strings.ToUpper(currency),
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *testGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown test intent %s", utils.ErrNotFound, id)
	}
	intent.Status = GatewayStatusSucceeded
	out := *intent
	return &out, nil
}
