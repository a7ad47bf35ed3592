package queue

import (
	"encoding/json"

	"github.com/shopcart-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartExpire 闲置购物车过期清理任务
	TaskCartExpire = constants.TaskCartExpire
)

// CartExpirePayload 购物车过期任务载荷
type CartExpirePayload struct {
	CartID string `json:"cart_id"`
}

// NewCartExpireTask 创建购物车过期任务
func NewCartExpireTask(payload CartExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartExpire, body), nil
}

// ParseCartExpirePayload 解析购物车过期任务载荷
func ParseCartExpirePayload(body []byte) (CartExpirePayload, error) {
	var payload CartExpirePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return CartExpirePayload{}, err
	}
	return payload, nil
}
