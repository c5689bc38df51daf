package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	SandboxURL = "https://api-m.sandbox.paypal.com"
	LiveURL    = "https://api-m.paypal.com"
)

// BaseURL picks the REST endpoint for a PayPal mode. override wins when set.
func BaseURL(mode, override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	if mode == "live" {
		return LiveURL
	}
	return SandboxURL
}

type PaypalOptions struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	WebhookID    string
}

type Paypal struct {
	client    *resty.Client
	webhookID string
}

var _ Gateway = (*Paypal)(nil)

// NewPaypal returns a client for the PayPal v1 payments API. Access tokens are
// fetched with the client credentials grant and reused until they expire.
func NewPaypal(opts PaypalOptions) *Paypal {
	cc := clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.BaseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	client := resty.NewWithClient(cc.Client(context.Background())).
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json")

	return &Paypal{client: client, webhookID: opts.WebhookID}
}

type paypalLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paypalAmount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type paypalSale struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type paypalPayment struct {
	ID           string       `json:"id"`
	State        string       `json:"state"`
	Links        []paypalLink `json:"links"`
	Transactions []struct {
		RelatedResources []struct {
			Sale *paypalSale `json:"sale"`
		} `json:"related_resources"`
	} `json:"transactions"`
}

func (p paypalPayment) saleID() string {
	for _, t := range p.Transactions {
		for _, r := range t.RelatedResources {
			if r.Sale != nil && r.Sale.ID != "" {
				return r.Sale.ID
			}
		}
	}
	return ""
}

func failure(op string, resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrapf(ErrGateway, "%s: %v", op, err)
	}
	return errors.Wrapf(ErrGateway, "%s: %s %s", op, resp.Status(), resp.String())
}

func (pp *Paypal) CreatePayment(ctx context.Context, order Order) (*Created, error) {
	body := map[string]interface{}{
		"intent": "sale",
		"payer":  map[string]string{"payment_method": "paypal"},
		"redirect_urls": map[string]string{
			"return_url": order.ReturnURL,
			"cancel_url": order.CancelURL,
		},
		"transactions": []map[string]interface{}{{
			"amount":         paypalAmount{Total: order.Amount.StringFixed(2), Currency: order.Currency},
			"description":    order.Description,
			"invoice_number": order.Reference,
			"item_list": map[string]interface{}{
				"items": []map[string]interface{}{{
					"name":     order.Description,
					"sku":      order.Reference,
					"price":    order.Amount.StringFixed(2),
					"currency": order.Currency,
					"quantity": 1,
				}},
			},
		}},
	}

	var out paypalPayment
	resp, err := pp.client.R().SetContext(ctx).SetBody(body).SetResult(&out).Post("/v1/payments/payment")
	if err != nil || resp.IsError() {
		return nil, failure("create payment", resp, err)
	}

	created := &Created{GatewayID: out.ID, Raw: json.RawMessage(resp.Body())}
	for _, link := range out.Links {
		if link.Rel == "approval_url" {
			created.ApprovalURL = link.Href
		}
	}
	if created.GatewayID == "" || created.ApprovalURL == "" {
		return nil, errors.Wrap(ErrGateway, "create payment: response has no id or approval url")
	}
	return created, nil
}

func (pp *Paypal) ExecutePayment(ctx context.Context, gatewayID, payerID string) (*Executed, error) {
	var out paypalPayment
	resp, err := pp.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"payer_id": payerID}).
		SetResult(&out).
		Post("/v1/payments/payment/" + gatewayID + "/execute")
	if err != nil || resp.IsError() {
		return nil, failure("execute payment", resp, err)
	}
	return &Executed{State: out.State, SaleID: out.saleID(), Raw: json.RawMessage(resp.Body())}, nil
}

// RefundPayment refunds the sale behind an executed payment.
func (pp *Paypal) RefundPayment(ctx context.Context, gatewayID string, amount decimal.Decimal, currency string) (*Refunded, error) {
	var payment paypalPayment
	resp, err := pp.client.R().SetContext(ctx).SetResult(&payment).Get("/v1/payments/payment/" + gatewayID)
	if err != nil || resp.IsError() {
		return nil, failure("lookup payment", resp, err)
	}
	saleID := payment.saleID()
	if saleID == "" {
		return nil, errors.Wrapf(ErrGateway, "payment %s has no sale to refund", gatewayID)
	}

	var out paypalSale
	resp, err = pp.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"amount": paypalAmount{Total: amount.StringFixed(2), Currency: currency},
		}).
		SetResult(&out).
		Post("/v1/payments/sale/" + saleID + "/refund")
	if err != nil || resp.IsError() {
		return nil, failure("refund sale", resp, err)
	}
	return &Refunded{RefundID: out.ID, State: out.State, Raw: json.RawMessage(resp.Body())}, nil
}

// VerifyWebhook asks PayPal to check the transmission signature. Without a
// configured webhook id there is nothing to verify against and every body is accepted.
func (pp *Paypal) VerifyWebhook(ctx context.Context, headers map[string]string, body []byte) (bool, error) {
	if pp.webhookID == "" {
		return true, nil
	}
	if !json.Valid(body) {
		return false, nil
	}

	req := map[string]interface{}{
		"auth_algo":         headers["Paypal-Auth-Algo"],
		"cert_url":          headers["Paypal-Cert-Url"],
		"transmission_id":   headers["Paypal-Transmission-Id"],
		"transmission_sig":  headers["Paypal-Transmission-Sig"],
		"transmission_time": headers["Paypal-Transmission-Time"],
		"webhook_id":        pp.webhookID,
		"webhook_event":     json.RawMessage(body),
	}
	var out struct {
		VerificationStatus string `json:"verification_status"`
	}
	resp, err := pp.client.R().SetContext(ctx).SetBody(req).SetResult(&out).
		Post("/v1/notifications/verify-webhook-signature")
	if err != nil || resp.IsError() {
		return false, failure("verify webhook", resp, err)
	}
	return out.VerificationStatus == "SUCCESS", nil
}

// WebhookHeaders lists the transmission headers VerifyWebhook reads.
var WebhookHeaders = []string{
	"Paypal-Auth-Algo",
	"Paypal-Cert-Url",
	"Paypal-Transmission-Id",
	"Paypal-Transmission-Sig",
	"Paypal-Transmission-Time",
}
