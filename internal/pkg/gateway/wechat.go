package gateway

import (
	"context"
	"errors"
	"fmt"

	"marketplace_backend/internal/pkg/config"

	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/refunddomestic"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

type WechatGateway struct {
	svc refunddomestic.RefundsApiService
}

func NewWechatGateway() (*WechatGateway, error) {
	cfg := config.GlobalConfig.Wechat
	if cfg.MchID == "" {
		return nil, errors.New("wechat pay config missing")
	}

	// 1. 加载商户私钥
	mchPrivateKey, err := utils.LoadPrivateKey(cfg.MchPrivateKey)
	if err != nil {
		return nil, err
	}

	// 2. 初始化 Client
	ctx := context.Background()
	opts := []core.ClientOption{
		option.WithWechatPayAutoAuthCipher(cfg.MchID, cfg.MchCertificateSerial, mchPrivateKey, cfg.APIv3Key),
	}

	client, err := core.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &WechatGateway{
		svc: refunddomestic.RefundsApiService{Client: client},
	}, nil
}

// CreateRefund 发起微信退款
func (g *WechatGateway) CreateRefund(ctx context.Context, req RefundRequest) (string, error) {
	resp, _, err := g.svc.Create(ctx, refunddomestic.CreateRequest{
		TransactionId: core.String(req.PaymentRef),
		OutRefundNo:   core.String(outRequestNo(req.Metadata)),
		Reason:        core.String(req.Reason),
		Amount: &refunddomestic.AmountReq{
			Refund:   core.Int64(req.AmountCents),
			Total:    core.Int64(req.TotalCents),
			Currency: core.String("CNY"),
		},
	})
	if err != nil {
		return "", err
	}
	if resp.Status != nil && *resp.Status == refunddomestic.STATUS_ABNORMAL {
		return "", fmt.Errorf("wechat refund abnormal: %s", *resp.RefundId)
	}

	return *resp.RefundId, nil
}

// QueryRefund 按商户退款单号查询退款结果
func (g *WechatGateway) QueryRefund(ctx context.Context, req RefundRequest) (*QueryResult, error) {
	resp, result, err := g.svc.QueryByOutRefundNo(ctx, refunddomestic.QueryByOutRefundNoRequest{
		OutRefundNo: core.String(outRequestNo(req.Metadata)),
	})
	if err != nil {
		// 404 表示渠道侧没有这笔退款
		if result != nil && result.Response != nil && result.Response.StatusCode == 404 {
			return &QueryResult{Found: false}, nil
		}
		return nil, err
	}

	out := &QueryResult{Found: true}
	if resp.RefundId != nil {
		out.GatewayRefundID = *resp.RefundId
	}
	if resp.Status != nil {
		out.Succeeded = *resp.Status == refunddomestic.STATUS_SUCCESS
	}
	return out, nil
}

var _ RefundGateway = (*WechatGateway)(nil)
