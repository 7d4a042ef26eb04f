package gateway

import (
	"context"
	"errors"
	"fmt"

	"marketplace_backend/internal/pkg/config"

	"github.com/smartwalle/alipay/v3"
)

type AlipayGateway struct {
	client *alipay.Client
}

func NewAlipayGateway() (*AlipayGateway, error) {
	cfg := config.GlobalConfig.Alipay
	if cfg.AppID == "" {
		return nil, errors.New("alipay config missing")
	}

	client, err := alipay.New(cfg.AppID, cfg.PrivateKey, cfg.IsProduction)
	if err != nil {
		return nil, err
	}

	// 加载支付宝公钥 (用于验证签名)
	if err = client.LoadAliPayPublicKey(cfg.PublicKey); err != nil {
		return nil, err
	}

	return &AlipayGateway{client: client}, nil
}

// CreateRefund 发起支付宝退款
// 支付宝没有独立的退款单号，OutRequestNo 即幂等键
// SDK 客户端不接收 context，超时由其内部 http.Client 控制
func (g *AlipayGateway) CreateRefund(_ context.Context, req RefundRequest) (string, error) {
	outNo := outRequestNo(req.Metadata)

	p := alipay.TradeRefund{}
	p.TradeNo = req.PaymentRef
	p.RefundAmount = fmt.Sprintf("%.2f", float64(req.AmountCents)/100)
	p.RefundReason = req.Reason
	p.OutRequestNo = outNo

	rsp, err := g.client.TradeRefund(p)
	if err != nil {
		return "", err
	}
	if !rsp.IsSuccess() {
		return "", fmt.Errorf("alipay refund failed: %s", rsp.SubMsg)
	}

	return outNo, nil
}

// QueryRefund 按 OutRequestNo 查询退款结果
func (g *AlipayGateway) QueryRefund(_ context.Context, req RefundRequest) (*QueryResult, error) {
	outNo := outRequestNo(req.Metadata)

	p := alipay.TradeFastPayRefundQuery{}
	p.TradeNo = req.PaymentRef
	p.OutRequestNo = outNo

	rsp, err := g.client.TradeFastPayRefundQuery(p)
	if err != nil {
		return nil, err
	}
	if !rsp.IsSuccess() {
		// 查无此退款记录
		return &QueryResult{Found: false}, nil
	}

	return &QueryResult{
		Found:           true,
		Succeeded:       rsp.RefundStatus == "REFUND_SUCCESS",
		GatewayRefundID: outNo,
	}, nil
}

var _ RefundGateway = (*AlipayGateway)(nil)
