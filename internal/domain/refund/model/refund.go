package model

import "time"

// 退款单状态机
// pending → processing → completed | failed
// pending → cancelled
// 终态 (completed / failed / cancelled) 不可再变更
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// 退款类型
const (
	TypeFull    = "full"
	TypePartial = "partial"
)

// 发起方
const (
	RequestedByCustomer = "customer"
	RequestedByAdmin    = "admin"
)

// Refund 退款单
// Channel / PaymentRef 从订单冗余，退款处理不再依赖订单读
type Refund struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	OrderID         uint         `gorm:"index;not null" json:"orderId"`
	CustomerID      *uint        `gorm:"index" json:"customerId,omitempty"`
	Amount          float64      `gorm:"type:decimal(10,2);not null" json:"amount"`
	Reason          string       `gorm:"type:varchar(500)" json:"reason"`
	Type            string       `gorm:"type:varchar(10);not null" json:"type"`
	Status          string       `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Channel         string       `gorm:"type:varchar(20);not null" json:"channel"`
	PaymentRef      string       `gorm:"type:varchar(128)" json:"paymentRef"`
	GatewayRefundID string       `gorm:"type:varchar(128)" json:"gatewayRefundId,omitempty"`
	RequestedBy     string       `gorm:"type:varchar(10);not null" json:"requestedBy"`
	AdminNote       string       `gorm:"type:varchar(500)" json:"adminNote,omitempty"`
	ProcessedBy     *uint        `json:"processedBy,omitempty"`
	ProcessedAt     *time.Time   `json:"processedAt,omitempty"`
	Items           []RefundItem `gorm:"foreignKey:RefundID" json:"items,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// RefundItem 部分退款的明细行，金额按订单行成交价重算
type RefundItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	RefundID    uint    `gorm:"index;not null" json:"refundId"`
	OrderItemID uint    `gorm:"not null" json:"orderItemId"`
	ProductID   uint    `gorm:"not null" json:"productId"`
	Name        string  `gorm:"type:varchar(200);not null" json:"name"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	Amount      float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	Reason      string  `gorm:"type:varchar(500)" json:"reason,omitempty"`
}

// IsTerminal 是否已到终态
func (r *Refund) IsTerminal() bool {
	switch r.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsLive 是否占用订单的活跃退款名额 (pending / processing)
func (r *Refund) IsLive() bool {
	return r.Status == StatusPending || r.Status == StatusProcessing
}
