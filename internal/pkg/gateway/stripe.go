package gateway

import (
	"context"
	"errors"

	"marketplace_backend/internal/pkg/config"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/refund"
)

type StripeGateway struct{}

func NewStripeGateway() (*StripeGateway, error) {
	cfg := config.GlobalConfig.Stripe
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe config missing")
	}

	stripe.Key = cfg.SecretKey
	return &StripeGateway{}, nil
}

// CreateRefund 通过 Stripe 对 PaymentIntent 发起退款
func (g *StripeGateway) CreateRefund(_ context.Context, req RefundRequest) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentRef),
		Amount:        stripe.Int64(req.AmountCents),
		Reason:        stripe.String("requested_by_customer"),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	stripeRefund, err := refund.New(params)
	if err != nil {
		return "", err
	}
	return stripeRefund.ID, nil
}

// QueryRefund 按 PaymentIntent 列出退款，用元数据中的 refund_id 匹配本次退款
func (g *StripeGateway) QueryRefund(_ context.Context, req RefundRequest) (*QueryResult, error) {
	params := &stripe.RefundListParams{
		PaymentIntent: stripe.String(req.PaymentRef),
	}

	iter := refund.List(params)
	for iter.Next() {
		r := iter.Refund()
		if r.Metadata["refund_id"] != req.Metadata["refund_id"] {
			continue
		}
		return &QueryResult{
			Found:           true,
			Succeeded:       r.Status == stripe.RefundStatusSucceeded,
			GatewayRefundID: r.ID,
		}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return &QueryResult{Found: false}, nil
}

var _ RefundGateway = (*StripeGateway)(nil)
