package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"vitalwatch/internal/domain"
	"vitalwatch/internal/store"

	"go.uber.org/zap"
)

// actuatorKeyPrefix 与设备固件约定的轮询路径
const actuatorKeyPrefix = "buzzer_control/"

// CommandPublisher 可选的推送通道（MQTT retained 消息），
// 设备既可轮询 registry 也可订阅推送。
type CommandPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// ActuatorRegistry 每个设备一条 last-write-wins 的指令状态。
// Gateway 是唯一写入方；读取方是轮询的物理设备。不加锁：每次写入完整覆盖
// 全部字段，读到上一条或下一条完整状态都可接受。
type ActuatorRegistry struct {
	kv          store.KV
	publisher   CommandPublisher // nil 时仅写 KV
	topicPrefix string
	logger      *zap.Logger
}

func NewActuatorRegistry(kv store.KV, publisher CommandPublisher, topicPrefix string, logger *zap.Logger) *ActuatorRegistry {
	return &ActuatorRegistry{
		kv:          kv,
		publisher:   publisher,
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

// Command 覆盖写设备的当前指令状态（无历史）
func (r *ActuatorRegistry) Command(ctx context.Context, state *domain.ActuatorState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal actuator state: %w", err)
	}

	if err := r.kv.Set(ctx, actuatorKeyPrefix+state.DeviceID, string(payload), 0); err != nil {
		return fmt.Errorf("failed to write actuator state: %w", err)
	}

	// 推送是 KV 之外的便利通道，失败只记日志
	if r.publisher != nil {
		topic := r.topicPrefix + "/" + state.DeviceID
		if err := r.publisher.Publish(topic, 1, true, payload); err != nil {
			r.logger.Warn("buzzer command publish failed",
				zap.String("device_id", state.DeviceID),
				zap.String("topic", topic),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Get 读取设备当前指令状态（测试与运维排查用）
func (r *ActuatorRegistry) Get(ctx context.Context, deviceID string) (*domain.ActuatorState, error) {
	raw, err := r.kv.Get(ctx, actuatorKeyPrefix+deviceID)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read actuator state: %w", err)
	}

	var state domain.ActuatorState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode actuator state: %w", err)
	}
	return &state, nil
}

// List 列出全部设备的当前指令状态（运维面板用），按 deviceId 排序。
// SCAN 与 GET 之间 key 可能消失，miss 直接跳过。
func (r *ActuatorRegistry) List(ctx context.Context) ([]domain.ActuatorState, error) {
	keys, err := r.kv.ScanKeys(ctx, actuatorKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan actuator states: %w", err)
	}

	out := make([]domain.ActuatorState, 0, len(keys))
	for _, key := range keys {
		raw, err := r.kv.Get(ctx, key)
		if errors.Is(err, store.ErrMiss) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read actuator state: %w", err)
		}
		var state domain.ActuatorState
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			r.logger.Warn("skipping undecodable actuator state",
				zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}
