// Package gateway talks to external payment providers.
package gateway

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"lumos/config"
)

var (
	// ErrGateway wraps every failure reported by, or while reaching, a provider.
	ErrGateway = errors.New("payment gateway error")
	// ErrUnsupportedMethod is returned for payment methods with no integration.
	ErrUnsupportedMethod = errors.New("payment method not supported")
)

// Order describes a single item checkout sent to the provider.
type Order struct {
	Reference   string
	Description string
	Amount      decimal.Decimal
	Currency    string
	ReturnURL   string
	CancelURL   string
}

type Created struct {
	GatewayID   string
	ApprovalURL string
	Raw         json.RawMessage
}

type Executed struct {
	State  string
	SaleID string
	Raw    json.RawMessage
}

type Refunded struct {
	RefundID string
	State    string
	Raw      json.RawMessage
}

// Gateway is the provider facing side of the payment lifecycle.
type Gateway interface {
	CreatePayment(ctx context.Context, order Order) (*Created, error)
	ExecutePayment(ctx context.Context, gatewayID, payerID string) (*Executed, error)
	RefundPayment(ctx context.Context, gatewayID string, amount decimal.Decimal, currency string) (*Refunded, error)
	// VerifyWebhook reports whether a notification body was signed by the provider.
	VerifyWebhook(ctx context.Context, headers map[string]string, body []byte) (bool, error)
}

// Default is the gateway used by the payment controllers. main sets it at startup.
var Default Gateway

// NewFromConfig builds the PayPal gateway from application config.
func NewFromConfig(cfg *config.Config) Gateway {
	return NewPaypal(PaypalOptions{
		BaseURL:      BaseURL(cfg.PaypalMode, cfg.PaypalApiURL),
		ClientID:     cfg.PaypalClientID,
		ClientSecret: cfg.PaypalClientSecret,
		WebhookID:    cfg.PaypalWebhookID,
	})
}

// ForMethod returns the gateway for a payment method.
func ForMethod(method string) (Gateway, error) {
	switch method {
	case "paypal":
		if Default == nil {
			return nil, errors.Wrap(ErrGateway, "paypal gateway is not configured")
		}
		return Default, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedMethod, "%s", method)
	}
}
