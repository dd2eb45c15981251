package queue

import (
	"encoding/json"

	"github.com/kharido-next/internal/constants"

	"github.com/hibiken/asynq"
)

// TaskOrderConfirmed 订单确认通知任务类型
const TaskOrderConfirmed = constants.TaskOrderConfirmed

// OrderConfirmedPayload 订单确认任务载荷
type OrderConfirmedPayload struct {
	OrderID uint   `json:"order_id"`
	OrderNo string `json:"order_no"`
	Channel string `json:"channel"`
}

// NewOrderConfirmedTask 创建订单确认任务
func NewOrderConfirmedTask(payload OrderConfirmedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirmed, body), nil
}
