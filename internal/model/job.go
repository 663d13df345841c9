package model

// JobStatus is the remote lifecycle state of an asynchronous upload job.
type JobStatus string

// Job states reported by the backend.
const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status will never change again.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// UploadJob is a snapshot of a server-side import job.
type UploadJob struct {
	ID            string    `json:"id"`
	Status        JobStatus `json:"status"`
	Error         string    `json:"error,omitempty"`
	ProcessedRows int       `json:"processed_rows"`
	TotalRows     int       `json:"total_rows"`
}

// RowError describes one row the backend rejected during validation.
type RowError struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Row      int    `json:"row"`
}

// ValidationResult summarizes a backend validation pass over mapped rows.
type ValidationResult struct {
	Errors      []RowError `json:"errors"`
	ValidRows   int        `json:"valid_rows"`
	InvalidRows int        `json:"invalid_rows"`
}

// Clean reports whether every row validated.
func (v ValidationResult) Clean() bool {
	return v.InvalidRows == 0
}

// Organization is a tenant the authenticated user can act within.
type Organization struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
