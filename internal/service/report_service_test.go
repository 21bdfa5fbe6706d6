package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/classroom-api/internal/dto"
	"github.com/campushub/classroom-api/internal/models"
	"github.com/campushub/classroom-api/internal/repository"
	"github.com/campushub/classroom-api/pkg/jobs"
	"github.com/campushub/classroom-api/pkg/storage"
)

type fakeReportJobStore struct {
	jobs map[string]*models.ReportJob
}

func newFakeReportJobStore() *fakeReportJobStore {
	return &fakeReportJobStore{jobs: map[string]*models.ReportJob{}}
}

func (f *fakeReportJobStore) Create(_ context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = "job-1"
	}
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeReportJobStore) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	if job, ok := f.jobs[id]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReportJobStore) Update(_ context.Context, id string, params repository.UpdateReportJobParams) error {
	job, ok := f.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (f *fakeReportJobStore) ListQueued(_ context.Context, _ int) ([]models.ReportJob, error) {
	var out []models.ReportJob
	for _, job := range f.jobs {
		if job.Status == models.ReportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeReportJobStore) ListFinishedBefore(_ context.Context, cutoff time.Time, _ int) ([]models.ReportJob, error) {
	var out []models.ReportJob
	for _, job := range f.jobs {
		if job.Status == models.ReportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

type fakeDispatcher struct {
	enqueued []jobs.Job
	fail     bool
}

func (f *fakeDispatcher) Enqueue(job jobs.Job) error {
	if f.fail {
		return assert.AnError
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

func newReportFixture(t *testing.T) (*fakeReportJobStore, *fakeDispatcher, *storage.LocalStorage, *storage.SignedURLSigner) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return newFakeReportJobStore(), &fakeDispatcher{}, store, signer
}

func TestCreateJobEnqueues(t *testing.T) {
	repo, queue, store, signer := newReportFixture(t)
	svc := NewReportService(repo, queue, store, signer, nil, nil, zap.NewNop(), ReportServiceConfig{BaseURL: "http://localhost:8080"})

	roomID := "r1"
	resp, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:   models.ReportTypeRoomDetail,
		Format: models.ReportFormatCSV,
		RoomID: &roomID,
	}, "u1")
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
}

func TestCreateJobRoomDetailRequiresRoom(t *testing.T) {
	repo, queue, store, signer := newReportFixture(t)
	svc := NewReportService(repo, queue, store, signer, nil, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:   models.ReportTypeRoomDetail,
		Format: models.ReportFormatPDF,
	}, "u1")
	require.Error(t, err)
	assert.Empty(t, queue.enqueued)
}

func TestCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	repo, queue, store, signer := newReportFixture(t)
	queue.fail = true
	svc := NewReportService(repo, queue, store, signer, nil, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:   models.ReportTypeGeneral,
		Format: models.ReportFormatCSV,
	}, "u1")
	require.Error(t, err)

	job, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, job.Status)
}

func TestWorkerHandleFinishesJob(t *testing.T) {
	repo, _, store, signer := newReportFixture(t)
	data := newExportFixture()
	exporter := NewExportService(data, data, data, zap.NewNop())
	worker := NewReportWorker(repo, exporter, store, signer, nil, "http://localhost:8080/", 3, zap.NewNop())

	job := &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypeGeneral,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
		Status: models.ReportStatusQueued,
	}
	require.NoError(t, repo.Create(context.Background(), job))

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	require.NotNil(t, stored.ResultURL)
	assert.Contains(t, *stored.ResultURL, "http://localhost:8080/api/v1/reports/job-1/download?token=")
}

func TestWorkerRequeuesUntilMaxRetries(t *testing.T) {
	repo, _, store, signer := newReportFixture(t)
	data := newExportFixture()
	exporter := NewExportService(data, data, data, zap.NewNop())
	worker := NewReportWorker(repo, exporter, store, signer, nil, "http://localhost:8080", 3, zap.NewNop())

	// room_detail without a room id makes generation fail every attempt.
	job := &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypeRoomDetail,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
		Status: models.ReportStatusQueued,
	}
	require.NoError(t, repo.Create(context.Background(), job))

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.Error(t, err)
	stored, _ := repo.GetByID(context.Background(), "job-1")
	assert.Equal(t, models.ReportStatusQueued, stored.Status)

	err = worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 3})
	require.Error(t, err)
	stored, _ = repo.GetByID(context.Background(), "job-1")
	assert.Equal(t, models.ReportStatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.NotEmpty(t, *stored.ErrorMessage)
}

func TestResolveDownloadRoundTrip(t *testing.T) {
	repo, _, store, signer := newReportFixture(t)
	data := newExportFixture()
	exporter := NewExportService(data, data, data, zap.NewNop())
	worker := NewReportWorker(repo, exporter, store, signer, nil, "http://localhost:8080", 3, zap.NewNop())
	svc := NewReportService(repo, &fakeDispatcher{}, store, signer, nil, nil, zap.NewNop(), ReportServiceConfig{BaseURL: "http://localhost:8080"})

	job := &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypeGeneral,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
		Status: models.ReportStatusQueued,
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1}))

	stored, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	token := extractToken(*stored.ResultURL)
	require.NotEmpty(t, token)

	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()

	assert.Equal(t, models.ReportFormatCSV, download.Format)
	assert.True(t, strings.HasSuffix(download.Filename, ".csv"))
	content, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Lab 101")
}

func TestResolveDownloadRejectsBadToken(t *testing.T) {
	repo, queue, store, signer := newReportFixture(t)
	svc := NewReportService(repo, queue, store, signer, nil, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.ResolveDownload(context.Background(), "garbage-token")
	require.Error(t, err)
}

func TestRecoverPendingJobsRequeues(t *testing.T) {
	repo, queue, store, signer := newReportFixture(t)
	svc := NewReportService(repo, queue, store, signer, nil, nil, zap.NewNop(), ReportServiceConfig{})

	require.NoError(t, repo.Create(context.Background(), &models.ReportJob{ID: "queued-1", Type: models.ReportTypeGeneral, Status: models.ReportStatusQueued}))
	done := models.ReportJob{ID: "done-1", Type: models.ReportTypeGeneral, Status: models.ReportStatusFinished}
	require.NoError(t, repo.Create(context.Background(), &done))

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "queued-1", queue.enqueued[0].ID)
}
