package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

const sessionIDPlaceholder = "session_id={CHECKOUT_SESSION_ID}"

var (
	ErrMissingSecretKey   = errors.New("stripe secret key must not be empty")
	ErrMissingRedirectURL = errors.New("success and cancel URLs must not be empty")
	ErrEmptySessionID     = errors.New("session id must not be empty")
)

// Config holds what the gateway needs to open a session.
type Config struct {
	SecretKey  string
	Currency   string
	SuccessURL string
	CancelURL  string
}

// sessionAPI is the part of the Stripe client the gateway uses.
type sessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway creates and retrieves Stripe Checkout Sessions.
type StripeGateway struct {
	sessions   sessionAPI
	currency   string
	successURL string
	cancelURL  string
}

// NewStripeGateway creates a StripeGateway with its own client, so no global Stripe state is used.
func NewStripeGateway(cfg Config) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}

	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)

	return newStripeGateway(sc.CheckoutSessions, cfg)
}

func newStripeGateway(sessions sessionAPI, cfg Config) (*StripeGateway, error) {
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, ErrMissingRedirectURL
	}

	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	return &StripeGateway{
		sessions:   sessions,
		currency:   currency,
		successURL: withSessionID(cfg.SuccessURL),
		cancelURL:  withSessionID(cfg.CancelURL),
	}, nil
}

// CreateSession opens a one-item payment session for the charge.
func (g *StripeGateway) CreateSession(ctx context.Context, charge core.Charge) (core.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(charge.Description),
					},
					UnitAmount: stripe.Int64(charge.MinorUnits()),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("payment_type", string(charge.Type))
	params.Context = ctx

	session, err := g.sessions.New(params)
	if err != nil {
		return core.CheckoutSession{}, mapStripeError(err)
	}

	return toCheckoutSession(session), nil
}

// RetrieveSession reads the current status of a session.
func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (core.CheckoutSession, error) {
	if sessionID == "" {
		return core.CheckoutSession{}, errors.Join(core.ErrUpstreamGateway, ErrEmptySessionID)
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := g.sessions.Get(sessionID, params)
	if err != nil {
		return core.CheckoutSession{}, mapStripeError(err)
	}

	return toCheckoutSession(session), nil
}

func toCheckoutSession(session *stripe.CheckoutSession) core.CheckoutSession {
	return core.CheckoutSession{
		ID:            session.ID,
		URL:           session.URL,
		Status:        string(session.Status),
		PaymentStatus: string(session.PaymentStatus),
	}
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: provider unavailable (%d): %s", core.ErrUpstreamGateway, stripeErr.HTTPStatusCode, stripeErr.Msg)
		}

		return fmt.Errorf("%w: request rejected (%d): %s", core.ErrUpstreamGateway, stripeErr.HTTPStatusCode, stripeErr.Msg)
	}

	return errors.Join(core.ErrUpstreamGateway, err)
}

func withSessionID(url string) string {
	if strings.Contains(url, "?") {
		return url + "&" + sessionIDPlaceholder
	}

	return url + "?" + sessionIDPlaceholder
}
