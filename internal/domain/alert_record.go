package domain

// AlertReasonECGAndTemp 当前唯一的报警原因
const AlertReasonECGAndTemp = "ecg_and_temp_alert"

// AlertRecord 一条被标记的读数（alert_records 表）
// Conceptually a secondary index over Sample keyed by (subject_id, ts): it
// duplicates the sample fields instead of referencing them, trading storage
// for read simplicity. Created only when the threshold policy fires; never
// updated or deleted.
type AlertRecord struct {
	EventID      string    `json:"eventId" db:"event_id"`
	DeviceID     string    `json:"deviceId" db:"device_id"`
	SubjectID    string    `json:"subjectId" db:"subject_id"`
	TemperatureC float64   `json:"temperature" db:"temperature_c"`
	ECG          []float64 `json:"ecg" db:"ecg"`
	Timestamp    int64     `json:"timestamp" db:"ts"`
	HeartRateBpm int       `json:"heartRate" db:"heart_rate_bpm"`
	Alert        bool      `json:"alert" db:"alert"`
	Reason       string    `json:"reason" db:"reason"`
}
