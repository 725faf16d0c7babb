// Package notifier 把通知消息投递到消息队列，由 notifier worker 消费并发送。
// 通知是尽力而为的：投递失败只记录日志，绝不让触发通知的业务操作失败
package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

const QueueName = "roster_notification_queue"

type Notifier struct {
	cfg     *config.Config
	channel *amqp.Channel
}

func NewNotifier(cfg *config.Config, channel *amqp.Channel) *Notifier {
	return &Notifier{
		cfg:     cfg,
		channel: channel,
	}
}

// Notify 投递一条通知。失败时记录日志并返回，不向调用方传播错误
func (n *Notifier) Notify(msg *domain.NotificationMessage) {
	body, err := json.Marshal(msg)
	if err != nil {
		slog.Error("通知消息序列化失败", "userID", msg.UserID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(n.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := n.channel.PublishWithContext(
		ctx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		slog.Error("通知消息投递失败", "userID", msg.UserID, "type", msg.Type, "error", err)
	}
}

// NotifyAll 并发投递一批通知并等待全部完成。
// 部分失败不影响其他消息，也不影响已经提交的业务状态
func (n *Notifier) NotifyAll(msgs []*domain.NotificationMessage) {
	wg := sync.WaitGroup{}
	for _, msg := range msgs {
		wg.Add(1)
		go func(m *domain.NotificationMessage) {
			defer wg.Done()
			n.Notify(m)
		}(msg)
	}
	wg.Wait()
}
