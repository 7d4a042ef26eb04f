package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 店铺模块错误 200xx
	ErrStoreNotFound    = 20001
	ErrStoreNotApproved = 20002
	ErrStoreExists      = 20003
	ErrProductNotFound  = 20004
	ErrOutOfStock       = 20005

	// 订单模块错误 300xx
	ErrOrderNotFound  = 30001
	ErrOrderCancelled = 30002
	ErrEmptyOrder     = 30003

	// 退款模块错误 400xx
	ErrRefundNotFound   = 40001
	ErrRefundNotPending = 40002
	ErrRefundConflict   = 40003
	ErrRefundAmount     = 40004
	ErrRefundProcessing = 40005
	ErrAlreadyRefunded  = 40006

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
