package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
)

// publish 将消息序列化之后投递到指定队列
func (h *Handler) publish(queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.channel.PublishWithContext(
		ctx,
		"",
		queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (h *Handler) publishMail(msg domain.MailMessage) error {
	return h.publish(h.config.RabbitMQ.EmailQueue, msg)
}

// publishJob 投递优化任务，返回任务的 JobID
func (h *Handler) publishJob(runID int64) (string, error) {
	job := domain.OptimizationJob{JobID: uuid.NewString(), RunID: runID}
	if err := h.publish(h.config.RabbitMQ.OptimizationQueue, job); err != nil {
		return "", err
	}
	return job.JobID, nil
}
