package repository

import (
	"context"
	"testing"
	"time"

	"fieldpro-service/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would get its own empty in-memory db
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Technician{}, &model.Job{}))
	return db
}

func seedJob(t *testing.T, repo JobRepository, tenant string, job model.Job) *model.Job {
	t.Helper()

	if job.Code == "" {
		job.Code = "J-001"
	}
	if job.CustomerName == "" {
		job.CustomerName = "Acme"
	}
	if job.Address == "" {
		job.Address = "1 Main St"
	}
	if job.ScheduledAt.IsZero() {
		job.ScheduledAt = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	}
	require.NoError(t, repo.Create(context.Background(), tenant, &job))
	return &job
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }
