package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vitalwatch/internal/domain"

	"github.com/lib/pq"
)

// PostgresSampleRepository 生命体征时序数据Repository实现（vital_samples 表）
type PostgresSampleRepository struct {
	db *sql.DB
}

func NewPostgresSampleRepository(db *sql.DB) *PostgresSampleRepository {
	return &PostgresSampleRepository{db: db}
}

// 确保实现了接口
var _ SampleRepository = (*PostgresSampleRepository)(nil)

// Put 写入一条读数。
// (subject_id, ts) 为主键，ON CONFLICT 覆盖：同一毫秒的重复写与重试都收敛到
// 最后一次写（last-write-wins），历史长度不变。
func (r *PostgresSampleRepository) Put(ctx context.Context, s *domain.Sample) error {
	query := `
		INSERT INTO vital_samples (
			subject_id, ts, device_id, temperature_c, ecg, heart_rate_bpm, alert
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subject_id, ts)
		DO UPDATE SET device_id = EXCLUDED.device_id,
		              temperature_c = EXCLUDED.temperature_c,
		              ecg = EXCLUDED.ecg,
		              heart_rate_bpm = EXCLUDED.heart_rate_bpm,
		              alert = EXCLUDED.alert
	`

	_, err := r.db.ExecContext(ctx, query,
		s.SubjectID,
		s.Timestamp,
		s.DeviceID,
		s.TemperatureC,
		pq.Array(s.ECG),
		s.HeartRateBpm,
		s.Alert,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}
	return nil
}

// Latest 取该subject时间戳最大的一条
func (r *PostgresSampleRepository) Latest(ctx context.Context, subjectID string) (*domain.Sample, error) {
	query := `
		SELECT subject_id, ts, device_id, temperature_c, ecg, heart_rate_bpm, alert
		FROM vital_samples
		WHERE subject_id = $1
		ORDER BY ts DESC
		LIMIT 1
	`

	s, err := scanSample(r.db.QueryRowContext(ctx, query, subjectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query latest sample: %w", err)
	}
	return s, nil
}

// History 按时间戳升序返回全部读数
func (r *PostgresSampleRepository) History(ctx context.Context, subjectID string) ([]domain.Sample, error) {
	query := `
		SELECT subject_id, ts, device_id, temperature_c, ecg, heart_rate_bpm, alert
		FROM vital_samples
		WHERE subject_id = $1
		ORDER BY ts ASC
	`

	rows, err := r.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample history: %w", err)
	}
	defer rows.Close()

	var samples []domain.Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, domain.ErrNotFound
	}
	return samples, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSample(row rowScanner) (*domain.Sample, error) {
	var s domain.Sample
	var ecg pq.Float64Array
	if err := row.Scan(
		&s.SubjectID,
		&s.Timestamp,
		&s.DeviceID,
		&s.TemperatureC,
		&ecg,
		&s.HeartRateBpm,
		&s.Alert,
	); err != nil {
		return nil, err
	}
	s.ECG = []float64(ecg)
	return &s, nil
}
