package kafka

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spendfree/spendfree/internal/logger"
	"github.com/spendfree/spendfree/internal/model/statements"
)

type consumerConfig interface {
	producerConfig
	ConsumerGroup() string
}

type statementProcessor interface {
	ProcessRequest(ctx context.Context, req *statements.Request) error
}

type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	processor     statementProcessor
}

func NewConsumer(cfg consumerConfig, processor statementProcessor) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers(), cfg.ConsumerGroup(), config)
	return &Consumer{
		consumerGroup: consumerGroup,
		topic:         cfg.StatementsTopic(),
		processor:     processor,
	}, err
}

func (c *Consumer) StartConsuming(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("consume from %s", c.topic))
			}
		}
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - setup")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - cleanup")
	return nil
}

func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		req, err := statements.RequestFromJSON(message.Value)
		if err != nil {
			logger.Error("cannot unmarshal kafka message", zap.Error(err))
		} else {
			logger.Info(
				"received statement request",
				zap.ByteString("key", message.Key),
				zap.String("userID", req.UserID),
				zap.Int("month", req.Month),
				zap.Int("year", req.Year),
			)
			if err = c.processor.ProcessRequest(session.Context(), req); err != nil {
				logger.Error("failed to process statement request", zap.Error(err))
			}
		}
		session.MarkMessage(message, "")
	}

	return nil
}
