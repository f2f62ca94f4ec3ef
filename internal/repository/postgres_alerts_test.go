package repository

import (
	"context"
	"database/sql"
	"testing"

	"vitalwatch/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAlertRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresAlertRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresAlertRepository(db)
}

func TestPostgresAlertRepository_Put(t *testing.T) {
	db, mock, repo := setupAlertRepo(t)
	defer db.Close()

	rec := &domain.AlertRecord{
		EventID:      uuid.New().String(),
		DeviceID:     "D1",
		SubjectID:    "M1",
		TemperatureC: 38.0,
		ECG:          []float64{0.1, 1.0},
		Timestamp:    1000,
		HeartRateBpm: 45,
		Alert:        true,
		Reason:       domain.AlertReasonECGAndTemp,
	}

	mock.ExpectExec(`INSERT INTO alert_records`).
		WithArgs(rec.EventID, "M1", int64(1000), "D1", 38.0, pq.Array(rec.ECG),
			45, true, domain.AlertReasonECGAndTemp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Put(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAlertRepository_ListBySubject_Descending(t *testing.T) {
	db, mock, repo := setupAlertRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"event_id", "subject_id", "ts", "device_id", "temperature_c", "ecg",
		"heart_rate_bpm", "alert", "reason",
	}).
		AddRow("e2", "M1", int64(2000), "D1", 38.5, "{0.2}", 120, true, domain.AlertReasonECGAndTemp).
		AddRow("e1", "M1", int64(1000), "D1", 38.0, "{0.1}", 45, true, domain.AlertReasonECGAndTemp)

	mock.ExpectQuery(`SELECT\s+event_id`).
		WithArgs("M1").
		WillReturnRows(rows)

	alerts, err := repo.ListBySubject(context.Background(), "M1")
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, int64(2000), alerts[0].Timestamp)
	assert.Equal(t, int64(1000), alerts[1].Timestamp)
	assert.Equal(t, domain.AlertReasonECGAndTemp, alerts[0].Reason)
}

func TestPostgresAlertRepository_ListBySubject_Empty(t *testing.T) {
	db, mock, repo := setupAlertRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+event_id`).
		WithArgs("M9").
		WillReturnRows(sqlmock.NewRows([]string{
			"event_id", "subject_id", "ts", "device_id", "temperature_c", "ecg",
			"heart_rate_bpm", "alert", "reason",
		}))

	_, err := repo.ListBySubject(context.Background(), "M9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
