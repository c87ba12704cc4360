package schema

import "time"

// ProcessingJobStatus represents the status of a content ingestion job
type ProcessingJobStatus string

const (
	// ProcessingJobStatusQueued is the status of a job awaiting upload
	ProcessingJobStatusQueued ProcessingJobStatus = "queued"
	// ProcessingJobStatusProcessing is the status of a job whose content is being pinned
	ProcessingJobStatusProcessing ProcessingJobStatus = "processing"
	// ProcessingJobStatusDone is the status of a job whose content was pinned
	ProcessingJobStatusDone ProcessingJobStatus = "done"
	// ProcessingJobStatusFailed is the status of a job that exhausted all providers
	ProcessingJobStatusFailed ProcessingJobStatus = "failed"
)

// ProcessingJob represents the processing_jobs table - content ingestion jobs
// created when a story file and its metadata are submitted for pinning
type ProcessingJob struct {
	// ID is a ULID assigned at creation, sortable by creation time
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Status is the job lifecycle state
	Status ProcessingJobStatus `gorm:"column:status;not null;type:text;index"`
	// FileName is the original name of the submitted file
	FileName string `gorm:"column:file_name;not null;type:text"`
	// ContentType is the MIME type of the submitted file
	ContentType string `gorm:"column:content_type;not null;type:text"`
	// Tribe is the cultural community the submission is attributed to
	Tribe string `gorm:"column:tribe;not null;type:text"`
	// FileCID is the content identifier of the pinned file (nil until pinned)
	FileCID *string `gorm:"column:file_cid;type:text"`
	// MetadataCID is the content identifier of the pinned metadata document (nil until pinned)
	MetadataCID *string `gorm:"column:metadata_cid;type:text"`
	// Provider is the storage provider that accepted the content (nil until pinned)
	Provider *string `gorm:"column:provider;type:text"`
	// LastError records the most recent failure (nil unless failed)
	LastError *string `gorm:"column:last_error;type:text"`
	// CreatedAt is the timestamp when the job was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when the job was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ProcessingJob model
func (ProcessingJob) TableName() string {
	return "processing_jobs"
}
