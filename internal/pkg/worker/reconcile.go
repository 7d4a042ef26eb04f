package worker

import (
	"context"
	"time"

	"marketplace_backend/pkg/logger"

	"go.uber.org/zap"
)

// Reconciler 对账动作，由退款服务实现
type Reconciler interface {
	ReconcileStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// RefundSweeper 周期性收敛停留在 processing 的退款单
// 进程在网关调用前后崩溃都会留下 processing 状态，请求路径不做自动重试，全部由这里兜底
type RefundSweeper struct {
	reconciler Reconciler
	interval   time.Duration
	olderThan  time.Duration
	batchSize  int
	stop       chan struct{}
	done       chan struct{}
}

func NewRefundSweeper(r Reconciler, interval, olderThan time.Duration, batchSize int) *RefundSweeper {
	return &RefundSweeper{
		reconciler: r,
		interval:   interval,
		olderThan:  olderThan,
		batchSize:  batchSize,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start 启动后台扫描
func (s *RefundSweeper) Start() {
	go s.run()
	logger.Log.Info("refund sweeper started",
		zap.Duration("interval", s.interval), zap.Duration("older_than", s.olderThan))
}

// Stop 停止扫描并等待当前一轮结束
func (s *RefundSweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *RefundSweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *RefundSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	resolved, err := s.reconciler.ReconcileStale(ctx, s.olderThan, s.batchSize)
	if err != nil {
		logger.Log.Error("refund sweep failed", zap.Error(err))
		return
	}
	if resolved > 0 {
		logger.Log.Info("refund sweep finished", zap.Int("resolved", resolved))
	}
}
