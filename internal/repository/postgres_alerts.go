package repository

import (
	"context"
	"database/sql"
	"fmt"

	"vitalwatch/internal/domain"

	"github.com/lib/pq"
)

// PostgresAlertRepository 报警记录Repository实现（alert_records 表）
// 与 vital_samples 相同的 (subject_id, ts) 键，作为报警专用的二级索引表。
type PostgresAlertRepository struct {
	db *sql.DB
}

func NewPostgresAlertRepository(db *sql.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{db: db}
}

// 确保实现了接口
var _ AlertRepository = (*PostgresAlertRepository)(nil)

// Put 写入一条报警记录（同 key 重试覆盖，event_id 保留首次写入值以外全部更新）
func (r *PostgresAlertRepository) Put(ctx context.Context, rec *domain.AlertRecord) error {
	query := `
		INSERT INTO alert_records (
			event_id, subject_id, ts, device_id, temperature_c, ecg,
			heart_rate_bpm, alert, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (subject_id, ts)
		DO UPDATE SET device_id = EXCLUDED.device_id,
		              temperature_c = EXCLUDED.temperature_c,
		              ecg = EXCLUDED.ecg,
		              heart_rate_bpm = EXCLUDED.heart_rate_bpm,
		              alert = EXCLUDED.alert,
		              reason = EXCLUDED.reason
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.EventID,
		rec.SubjectID,
		rec.Timestamp,
		rec.DeviceID,
		rec.TemperatureC,
		pq.Array(rec.ECG),
		rec.HeartRateBpm,
		rec.Alert,
		rec.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert record: %w", err)
	}
	return nil
}

// ListBySubject 按时间戳降序返回该subject的全部报警（最近的在前）
func (r *PostgresAlertRepository) ListBySubject(ctx context.Context, subjectID string) ([]domain.AlertRecord, error) {
	query := `
		SELECT event_id, subject_id, ts, device_id, temperature_c, ecg,
		       heart_rate_bpm, alert, reason
		FROM alert_records
		WHERE subject_id = $1
		ORDER BY ts DESC
	`

	rows, err := r.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert records: %w", err)
	}
	defer rows.Close()

	var records []domain.AlertRecord
	for rows.Next() {
		var rec domain.AlertRecord
		var ecg pq.Float64Array
		if err := rows.Scan(
			&rec.EventID,
			&rec.SubjectID,
			&rec.Timestamp,
			&rec.DeviceID,
			&rec.TemperatureC,
			&ecg,
			&rec.HeartRateBpm,
			&rec.Alert,
			&rec.Reason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert record: %w", err)
		}
		rec.ECG = []float64(ecg)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert records: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}
	return records, nil
}
