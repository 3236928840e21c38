package redpanda

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kmsg"
)

// errTopicAlreadyExists is the Kafka TOPIC_ALREADY_EXISTS error code.
// Reference: https://kafka.apache.org/protocol#protocol_error_codes
const errTopicAlreadyExists int16 = 36

// requester issues raw Kafka protocol requests; *kgo.Client satisfies it.
type requester interface {
	Request(ctx context.Context, req kmsg.Request) (kmsg.Response, error)
}

// createTopicIfNotExists creates a topic and treats "already exists" as success.
func createTopicIfNotExists(ctx context.Context, client requester, topic string, partitions int32, replicationFactor int16) error {
	if topic == "" {
		return fmt.Errorf("topic name cannot be empty")
	}
	if partitions <= 0 {
		return fmt.Errorf("partitions must be greater than 0")
	}
	if replicationFactor <= 0 {
		return fmt.Errorf("replication factor must be greater than 0")
	}

	req := kmsg.NewCreateTopicsRequest()
	req.TimeoutMillis = 30000
	topicReq := kmsg.NewCreateTopicsRequestTopic()
	topicReq.Topic = topic
	topicReq.NumPartitions = partitions
	topicReq.ReplicationFactor = replicationFactor
	req.Topics = append(req.Topics, topicReq)

	resp, err := client.Request(ctx, &req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	createTopicsResp, ok := resp.(*kmsg.CreateTopicsResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}

	for _, topicResp := range createTopicsResp.Topics {
		if topicResp.ErrorCode == 0 {
			slog.Info("topic created", slog.String("topic", topicResp.Topic), slog.Int("partitions", int(partitions)))
			continue
		}
		if topicResp.ErrorCode == errTopicAlreadyExists {
			slog.Debug("topic already exists", slog.String("topic", topicResp.Topic))
			continue
		}
		errorMsg := ""
		if topicResp.ErrorMessage != nil {
			errorMsg = *topicResp.ErrorMessage
		}
		return fmt.Errorf("create topic error: %s (code %d)", errorMsg, topicResp.ErrorCode)
	}
	return nil
}
