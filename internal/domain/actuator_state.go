package domain

// Buzzer command values written to the actuator registry.
const (
	BuzzerOn  = "on"
	BuzzerOff = "off"
)

// ReasonNormal mirrors the buzzer-off state.
const ReasonNormal = "normal"

// ActuatorState 单个蜂鸣器的当前指令状态（buzzer_control/{deviceId}）
// Keyed by device, not subject. Exactly one live value per device: every new
// command overwrites the previous one (last-write-wins, no history). Each
// write sets all fields together so readers never observe a torn state.
type ActuatorState struct {
	DeviceID  string `json:"deviceId"`
	Buzzer    string `json:"buzzer"` // "on" / "off"
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"` // Unix 毫秒 of the last command
}
