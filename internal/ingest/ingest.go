package ingest

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/lorefolk/heritage-ledger/internal/contentstore"
	"github.com/lorefolk/heritage-ledger/internal/logger"
	"github.com/lorefolk/heritage-ledger/internal/store"
	"github.com/lorefolk/heritage-ledger/internal/store/schema"
)

// Submission is a story file plus its author-supplied metadata, received
// from the upload surface
type Submission struct {
	// FileName is the original name of the uploaded file
	FileName string
	// ContentType is the MIME type of the uploaded file
	ContentType string
	// Tribe is the cultural community the submission is attributed to
	Tribe string
	// Data is the raw file content
	Data []byte
	// Metadata is the author-supplied manifest (title, description, consent
	// and provenance fields); stored alongside the file under its own CID
	Metadata map[string]interface{}
}

// Result identifies the pinned artifacts of an accepted submission
type Result struct {
	// JobID is the processing job created for this submission
	JobID string
	// FileCID is the content identifier of the pinned file
	FileCID string
	// MetadataCID is the content identifier of the pinned metadata manifest
	MetadataCID string
	// Provider is the storage provider that accepted the file
	Provider string
}

// Ingestor runs the content ingestion path: pin the file, pin the metadata
// manifest referencing it, and track the whole thing as a processing job.
type Ingestor struct {
	store   store.Store
	content *contentstore.Store
}

// New creates an ingestor
func New(st store.Store, content *contentstore.Store) *Ingestor {
	return &Ingestor{store: st, content: content}
}

// Ingest pins a submission's file and metadata manifest. The job row is
// written first so a crash mid-upload leaves a visible queued job rather
// than silently dropped content.
func (i *Ingestor) Ingest(ctx context.Context, submission Submission) (*Result, error) {
	if submission.FileName == "" || submission.ContentType == "" {
		return nil, fmt.Errorf("file name and content type are required")
	}
	if submission.Tribe == "" {
		return nil, fmt.Errorf("tribe attribution is required")
	}
	if len(submission.Data) == 0 {
		return nil, fmt.Errorf("submission carries no file data")
	}

	job := &schema.ProcessingJob{
		ID:          ulid.Make().String(),
		Status:      schema.ProcessingJobStatusQueued,
		FileName:    submission.FileName,
		ContentType: submission.ContentType,
		Tribe:       submission.Tribe,
	}
	if err := i.store.CreateProcessingJob(ctx, job); err != nil {
		return nil, err
	}

	job.Status = schema.ProcessingJobStatusProcessing
	if err := i.store.UpdateProcessingJob(ctx, job); err != nil {
		logger.WarnCtx(ctx, "failed to mark job processing", zap.String("job_id", job.ID), zap.Error(err))
	}

	fileCID, provider, err := i.content.Upload(ctx, submission.FileName, submission.ContentType, submission.Data)
	if err != nil {
		i.fail(ctx, job, err)
		return nil, fmt.Errorf("failed to pin file: %w", err)
	}

	manifest := make(map[string]interface{}, len(submission.Metadata)+3)
	for k, v := range submission.Metadata {
		manifest[k] = v
	}
	manifest["fileCid"] = fileCID
	manifest["fileName"] = submission.FileName
	manifest["tribe"] = submission.Tribe

	metadataCID, _, err := i.content.UploadJSON(ctx, submission.FileName+".metadata.json", manifest)
	if err != nil {
		i.fail(ctx, job, err)
		return nil, fmt.Errorf("failed to pin metadata: %w", err)
	}

	job.Status = schema.ProcessingJobStatusDone
	job.FileCID = &fileCID
	job.MetadataCID = &metadataCID
	job.Provider = &provider
	if err := i.store.UpdateProcessingJob(ctx, job); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "submission pinned",
		zap.String("job_id", job.ID),
		zap.String("file_cid", fileCID),
		zap.String("metadata_cid", metadataCID),
		zap.String("provider", provider))

	return &Result{
		JobID:       job.ID,
		FileCID:     fileCID,
		MetadataCID: metadataCID,
		Provider:    provider,
	}, nil
}

// fail marks the job failed, keeping the original upload error for the caller
func (i *Ingestor) fail(ctx context.Context, job *schema.ProcessingJob, cause error) {
	message := cause.Error()
	job.Status = schema.ProcessingJobStatusFailed
	job.LastError = &message

	if err := i.store.UpdateProcessingJob(ctx, job); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to record job failure: %w", err),
			zap.String("job_id", job.ID))
	}
}
