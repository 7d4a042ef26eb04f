package notify

import (
	"fmt"

	"marketplace_backend/internal/pkg/config"
	"marketplace_backend/pkg/logger"

	"go.uber.org/zap"
)

// 收件人角色
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Notifier 通知接口，退款等业务事件通过它广播
// 通知失败只记录日志，永远不影响调用方的业务结果
type Notifier interface {
	Notify(recipientID *uint, role, title, body, category, deepLink string)
}

// Directory 解析收件人地址
type Directory interface {
	EmailByID(id uint) (string, error)
}

// Sink 组合通知出口：邮件 + 移动推送
type Sink struct {
	email     *EmailSender
	push      PushService // 可为 nil (未配置推送时)
	directory Directory
}

func NewSink(email *EmailSender, push PushService, directory Directory) *Sink {
	return &Sink{email: email, push: push, directory: directory}
}

// Notify 发送通知
// recipientID 为 nil 且 role 为 admin 时发送到管理员邮箱池
func (s *Sink) Notify(recipientID *uint, role, title, body, category, deepLink string) {
	go s.deliver(recipientID, role, title, body, category, deepLink)
}

func (s *Sink) deliver(recipientID *uint, role, title, body, category, deepLink string) {
	link := config.GlobalConfig.App.FrontendURL + deepLink
	htmlBody := fmt.Sprintf("<p>%s</p><p><a href=\"%s\">查看详情</a></p>", body, link)

	// 1. 邮件
	var to string
	if recipientID == nil {
		to = config.GlobalConfig.App.AdminEmail
	} else if s.directory != nil {
		email, err := s.directory.EmailByID(*recipientID)
		if err != nil {
			logger.Log.Warn("notify: failed to resolve recipient email",
				zap.Uint("recipient", *recipientID), zap.Error(err))
		} else {
			to = email
		}
	}

	if to != "" && s.email != nil {
		if err := s.email.Send(to, title, htmlBody); err != nil {
			logger.Log.Warn("notify: email delivery failed",
				zap.String("to", to), zap.String("category", category), zap.Error(err))
		}
	}

	// 2. 移动推送 (按账号)
	if s.push != nil && recipientID != nil {
		accountID := fmt.Sprintf("%d", *recipientID)
		ext := map[string]string{"category": category, "deep_link": link}
		if err := s.push.PushToAccount(accountID, title, body, ext); err != nil {
			logger.Log.Warn("notify: push delivery failed",
				zap.String("account", accountID), zap.Error(err))
		}
	}

	logger.Log.Info("notification dispatched",
		zap.String("role", role),
		zap.String("category", category),
		zap.String("title", title),
	)
}

var _ Notifier = (*Sink)(nil)
