package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kharido-next/internal/logger"
	"github.com/kharido-next/internal/provider"
	"github.com/kharido-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 队列任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 构造消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{Container: c}
}

// Register 注册任务处理器
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmed, c.handleOrderConfirmed)
}

// handleOrderConfirmed 订单确认后的通知落账，notified_at 只写一次
func (c *Consumer) handleOrderConfirmed(_ context.Context, task *asynq.Task) error {
	var payload queue.OrderConfirmedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirmed_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_confirmed_skip_invalid_payload")
		return nil
	}

	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_confirmed_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	switch {
	case order == nil:
		logger.Debugw("worker_order_confirmed_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	case order.NotifiedAt != nil:
		logger.Debugw("worker_order_confirmed_skip_already_notified", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}

	if err := c.OrderRepo.MarkNotified(order.ID, time.Now()); err != nil {
		logger.Warnw("worker_order_confirmed_mark_failed", "order_id", order.ID, "error", err)
		return err
	}
	logger.Infow("worker_order_confirmed_notified",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"channel", payload.Channel,
	)
	return nil
}
