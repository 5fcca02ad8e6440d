package repository

import (
	"context"
	"testing"
	"time"

	"fieldpro-service/internal/model"
	"fieldpro-service/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStampsTenantAndDefaults(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))

	job := model.Job{
		Code:         "J-100",
		CustomerName: "Acme",
		Address:      "1 Main St",
		ScheduledAt:  time.Date(2026, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
	}
	require.NoError(t, repo.Create(context.Background(), "tenant-a", &job))

	assert.NotZero(t, job.ID)
	assert.Equal(t, "tenant-a", job.TenantID)
	assert.Equal(t, model.StatusScheduled, job.Status)
	assert.False(t, job.IsDeleted)
	assert.Nil(t, job.CompletedAt)
	assert.Nil(t, job.DeletedAt)

	// Zoned input is normalized to the equivalent UTC instant
	assert.Equal(t, time.UTC, job.ScheduledAt.Location())
	assert.True(t, job.ScheduledAt.Equal(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)))
}

func TestListScopedToTenant(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	seedJob(t, repo, "tenant-a", model.Job{Code: "A-1"})
	seedJob(t, repo, "tenant-a", model.Job{Code: "A-2"})
	seedJob(t, repo, "tenant-b", model.Job{Code: "B-1"})

	jobs, err := repo.List(ctx, "tenant-a", JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.NotEqual(t, "B-1", j.Code)
	}

	jobs, err = repo.List(ctx, "tenant-c", JobFilter{})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestListArchiveModes(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	kept := seedJob(t, repo, "tenant-a", model.Job{Code: "KEEP"})
	archived := seedJob(t, repo, "tenant-a", model.Job{Code: "GONE"})
	require.NoError(t, repo.SoftDelete(ctx, "tenant-a", archived.ID))

	jobs, err := repo.List(ctx, "tenant-a", JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, kept.ID, jobs[0].ID)

	jobs, err = repo.List(ctx, "tenant-a", JobFilter{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, j := range jobs {
		if j.ID == archived.ID {
			assert.True(t, j.IsDeleted)
			assert.NotNil(t, j.DeletedAt)
		}
	}
}

func TestListStatusFilter(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	seedJob(t, repo, "tenant-a", model.Job{Code: "S-1", Status: model.StatusScheduled})
	seedJob(t, repo, "tenant-a", model.Job{Code: "P-1", Status: model.StatusInProgress})

	jobs, err := repo.List(ctx, "tenant-a", JobFilter{Status: model.StatusInProgress})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "P-1", jobs[0].Code)
}

func TestListSearchCaseInsensitive(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	seedJob(t, repo, "tenant-a", model.Job{Code: "J-1", CustomerName: "ACME Industrial"})
	seedJob(t, repo, "tenant-a", model.Job{Code: "J-2", CustomerName: "Globex", Project: strPtr("Acme Rollout")})
	seedJob(t, repo, "tenant-a", model.Job{Code: "J-3", CustomerName: "Initech"})

	jobs, err := repo.List(ctx, "tenant-a", JobFilter{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	jobs, err = repo.List(ctx, "tenant-a", JobFilter{Search: "j-3"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Initech", jobs[0].CustomerName)
}

func TestListOrderAndPagination(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	seedJob(t, repo, "tenant-a", model.Job{Code: "OLD", ScheduledAt: base})
	seedJob(t, repo, "tenant-a", model.Job{Code: "MID", ScheduledAt: base.Add(24 * time.Hour)})
	seedJob(t, repo, "tenant-a", model.Job{Code: "NEW", ScheduledAt: base.Add(48 * time.Hour)})

	jobs, err := repo.List(ctx, "tenant-a", JobFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "NEW", jobs[0].Code)
	assert.Equal(t, "MID", jobs[1].Code)

	jobs, err = repo.List(ctx, "tenant-a", JobFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "OLD", jobs[0].Code)
}

func TestListJoinsTechnicianName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepo(db)
	techRepo := NewTechnicianRepo(db)
	ctx := context.Background()

	tech := model.Technician{Name: "Dana"}
	require.NoError(t, techRepo.Create(ctx, "tenant-a", &tech))

	seedJob(t, repo, "tenant-a", model.Job{Code: "WITH", TechnicianID: &tech.ID})
	seedJob(t, repo, "tenant-a", model.Job{Code: "WITHOUT"})

	jobs, err := repo.List(ctx, "tenant-a", JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, j := range jobs {
		switch j.Code {
		case "WITH":
			require.NotNil(t, j.TechnicianName)
			assert.Equal(t, "Dana", *j.TechnicianName)
		case "WITHOUT":
			assert.Nil(t, j.TechnicianName)
		}
	}
}

func TestGetByIDCrossTenantInvisible(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	job := seedJob(t, repo, "tenant-a", model.Job{Code: "J-1"})

	found, err := repo.GetByID(ctx, "tenant-a", job.ID)
	require.NoError(t, err)
	assert.Equal(t, "J-1", found.Code)

	_, err = repo.GetByID(ctx, "tenant-b", job.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = repo.GetByID(ctx, "tenant-a", job.ID+999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateStatusStampsCompletionOnce(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	job := seedJob(t, repo, "tenant-a", model.Job{Code: "J-100"})

	require.NoError(t, repo.UpdateStatusAndNotes(ctx, "tenant-a", job.ID, model.StatusCompleted, strPtr("done")))

	first, err := repo.GetByID(ctx, "tenant-a", job.ID)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)
	assert.Equal(t, model.StatusCompleted, first.Status)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.UpdateStatusAndNotes(ctx, "tenant-a", job.ID, model.StatusCompleted, strPtr("done again")))

	second, err := repo.GetByID(ctx, "tenant-a", job.ID)
	require.NoError(t, err)
	require.NotNil(t, second.CompletedAt)
	assert.True(t, first.CompletedAt.Equal(*second.CompletedAt))
	require.NotNil(t, second.Notes)
	assert.Equal(t, "done again", *second.Notes)
}

func TestUpdateStatusCrossTenantNotFound(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	job := seedJob(t, repo, "tenant-a", model.Job{Code: "J-1"})

	err := repo.UpdateStatusAndNotes(ctx, "tenant-b", job.ID, model.StatusInProgress, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	unchanged, getErr := repo.GetByID(ctx, "tenant-a", job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.StatusScheduled, unchanged.Status)
}

func TestUpdateFieldsPartialSemantics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepo(db)
	techRepo := NewTechnicianRepo(db)
	ctx := context.Background()

	tech := model.Technician{Name: "Dana"}
	require.NoError(t, techRepo.Create(ctx, "tenant-a", &tech))

	job := seedJob(t, repo, "tenant-a", model.Job{
		Code:         "J-1",
		CustomerName: "Acme",
		TechnicianID: &tech.ID,
	})

	// Only notes supplied: other fields stay, but the technician
	// assignment is cleared because technician_id always overwrites.
	err := repo.UpdateFields(ctx, "tenant-a", job.ID, JobPatch{Notes: strPtr("rescheduled")})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "tenant-a", job.ID)
	require.NoError(t, err)
	assert.Equal(t, "J-1", got.Code)
	assert.Equal(t, "Acme", got.CustomerName)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "rescheduled", *got.Notes)
	assert.Nil(t, got.TechnicianID)

	// Supplying technician_id reassigns
	err = repo.UpdateFields(ctx, "tenant-a", job.ID, JobPatch{
		CustomerName: strPtr("Globex"),
		TechnicianID: uintPtr(tech.ID),
	})
	require.NoError(t, err)

	got, err = repo.GetByID(ctx, "tenant-a", job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Globex", got.CustomerName)
	require.NotNil(t, got.TechnicianID)
	assert.Equal(t, tech.ID, *got.TechnicianID)
}

func TestTenantIDImmutableAcrossUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJobRepo(db)
	ctx := context.Background()

	job := seedJob(t, repo, "tenant-a", model.Job{Code: "J-1"})

	require.NoError(t, repo.UpdateStatusAndNotes(ctx, "tenant-a", job.ID, model.StatusInProgress, nil))
	require.NoError(t, repo.UpdateFields(ctx, "tenant-a", job.ID, JobPatch{Code: strPtr("J-2")}))

	var stored model.Job
	require.NoError(t, db.First(&stored, job.ID).Error)
	assert.Equal(t, "tenant-a", stored.TenantID)
}

func TestSoftDelete(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	job := seedJob(t, repo, "tenant-a", model.Job{Code: "J-1"})

	require.NoError(t, repo.SoftDelete(ctx, "tenant-a", job.ID))

	jobs, err := repo.List(ctx, "tenant-a", JobFilter{})
	require.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, err = repo.List(ctx, "tenant-a", JobFilter{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].IsDeleted)
	assert.NotNil(t, jobs[0].DeletedAt)

	assert.ErrorIs(t, repo.SoftDelete(ctx, "tenant-b", job.ID), apperr.ErrNotFound)
	assert.ErrorIs(t, repo.SoftDelete(ctx, "tenant-a", job.ID+999), apperr.ErrNotFound)
}

func TestBulkSoftDeleteSkipsForeignIDs(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	a1 := seedJob(t, repo, "tenant-a", model.Job{Code: "A-1"})
	a2 := seedJob(t, repo, "tenant-a", model.Job{Code: "A-2"})
	b1 := seedJob(t, repo, "tenant-b", model.Job{Code: "B-1"})

	count, err := repo.BulkSoftDelete(ctx, "tenant-a", []uint{a1.ID, a2.ID, b1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// The foreign tenant's job is untouched
	foreign, err := repo.GetByID(ctx, "tenant-b", b1.ID)
	require.NoError(t, err)
	assert.False(t, foreign.IsDeleted)

	jobs, err := repo.List(ctx, "tenant-a", JobFilter{})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestBulkSoftDeleteEmptySet(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))

	_, err := repo.BulkSoftDelete(context.Background(), "tenant-a", nil)
	assert.ErrorIs(t, err, apperr.ErrEmptyBulkSet)
}

func TestHardDeleteRemovesRow(t *testing.T) {
	repo := NewJobRepo(setupTestDB(t))
	ctx := context.Background()

	job := seedJob(t, repo, "tenant-a", model.Job{Code: "J-1"})

	assert.ErrorIs(t, repo.HardDelete(ctx, "tenant-b", job.ID), apperr.ErrNotFound)
	require.NoError(t, repo.HardDelete(ctx, "tenant-a", job.ID))

	jobs, err := repo.List(ctx, "tenant-a", JobFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Empty(t, jobs)

	_, err = repo.GetByID(ctx, "tenant-a", job.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
