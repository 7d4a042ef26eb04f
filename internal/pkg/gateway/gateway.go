package gateway

import (
	"context"
	"errors"
)

// RefundRequest 发起退款所需的全部参数
// AmountCents/TotalCents 均为最小货币单位（分）
type RefundRequest struct {
	PaymentRef  string            // 支付渠道的支付单号 (如 Stripe PaymentIntent ID)
	AmountCents int64             // 本次退款金额
	TotalCents  int64             // 原订单总金额 (微信退款必填)
	Reason      string            // 退款原因
	Metadata    map[string]string // 审计/幂等元数据 (refund_id, order_id, type)
}

// QueryResult 退款查询结果
type QueryResult struct {
	Found           bool   // 渠道侧是否存在本次退款记录
	Succeeded       bool   // 渠道侧是否退款成功
	GatewayRefundID string // 渠道退款单号
}

// RefundGateway 退款网关策略接口
type RefundGateway interface {
	// CreateRefund 发起退款，返回渠道退款单号
	CreateRefund(ctx context.Context, req RefundRequest) (string, error)

	// QueryRefund 按幂等元数据查询退款状态 (对账任务使用)
	QueryRefund(ctx context.Context, req RefundRequest) (*QueryResult, error)
}

var (
	// ErrChannelNotSupported 订单的支付渠道没有注册退款网关
	ErrChannelNotSupported = errors.New("payment channel not supported")
)

// Registry 按支付渠道注册的退款网关集合
type Registry struct {
	gateways map[string]RefundGateway
}

func NewRegistry() *Registry {
	return &Registry{gateways: make(map[string]RefundGateway)}
}

// Register 注册渠道网关
func (r *Registry) Register(channel string, g RefundGateway) {
	r.gateways[channel] = g
}

// Get 获取渠道网关
func (r *Registry) Get(channel string) (RefundGateway, error) {
	g, ok := r.gateways[channel]
	if !ok {
		return nil, ErrChannelNotSupported
	}
	return g, nil
}

// outRequestNo 渠道侧幂等单号，由退款ID派生
func outRequestNo(metadata map[string]string) string {
	return "refund-" + metadata["refund_id"]
}
