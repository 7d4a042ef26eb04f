package model

import "time"

// 履约状态
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// 退款状态 (订单侧的冗余字段，随退款单状态机同步变更)
const (
	RefundStatusNone      = "none"
	RefundStatusRequested = "requested"
	RefundStatusPartial   = "partial"
	RefundStatusCompleted = "completed"
)

// 支付渠道
const (
	ChannelStripe = "stripe"
	ChannelAlipay = "alipay"
	ChannelWechat = "wechat"
)

// Order 订单模型
// CustomerID 可为空：部分流程允许未登录下单后补认证
type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	OrderNo      string      `gorm:"type:varchar(64);unique;not null" json:"orderNo"`
	CustomerID   *uint       `gorm:"index" json:"customerId,omitempty"`
	StoreID      uint        `gorm:"index;not null" json:"storeId"`
	TotalAmount  float64     `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Status       string      `gorm:"type:varchar(20);default:'pending'" json:"status"`
	RefundStatus string      `gorm:"type:varchar(20);default:'none'" json:"refundStatus"`
	Channel      string      `gorm:"type:varchar(20);not null" json:"channel"`
	PaymentRef   string      `gorm:"type:varchar(128)" json:"paymentRef"` // 支付渠道的支付单号
	Items        []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// OrderItem 订单行，记录下单时的成交价格
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"orderId"`
	ProductID uint    `gorm:"index;not null" json:"productId"`
	Name      string  `gorm:"type:varchar(200);not null" json:"name"`
	Price     float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Subtotal  float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
}

// IsCancelled 订单是否已取消
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}
