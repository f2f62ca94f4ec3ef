package domain

// Sample 一条已摄取的生命体征读数（对应 vital_samples 表）
// Created exactly once by the ingestion gateway; append-only afterwards.
// (subject_id, ts) is the store key: two samples from the same subject in the
// same millisecond overwrite each other (accepted conflation).
type Sample struct {
	DeviceID     string    `json:"deviceId" db:"device_id"`
	SubjectID    string    `json:"subjectId" db:"subject_id"`
	TemperatureC float64   `json:"temperature" db:"temperature_c"`
	ECG          []float64 `json:"ecg" db:"ecg"`
	Timestamp    int64     `json:"timestamp" db:"ts"` // Unix 毫秒
	HeartRateBpm int       `json:"heartRate" db:"heart_rate_bpm"`
	Alert        bool      `json:"alert" db:"alert"`
}
