// Package wizard drives the five-step upload flow: select file, preview,
// map columns, validate, upload. Navigation is strictly linear going
// forward; backward navigation keeps previously entered state.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/api"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/poll"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/spreadsheet"
)

// Step is a wizard position. Steps are numbered 1 through 5.
type Step int

// Wizard steps.
const (
	StepSelectFile Step = iota + 1
	StepPreview
	StepMapColumns
	StepValidate
	StepUpload
)

// String returns the step's display name.
func (s Step) String() string {
	switch s {
	case StepSelectFile:
		return "Select File"
	case StepPreview:
		return "Preview"
	case StepMapColumns:
		return "Map Columns"
	case StepValidate:
		return "Validate"
	case StepUpload:
		return "Upload"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Backend is the server-side collaborator the wizard talks to. api.Client
// satisfies it.
type Backend interface {
	ValidateUpload(ctx context.Context, req api.ValidateRequest) (model.ValidationResult, error)
	CreateUploadJob(ctx context.Context, req api.UploadRequest) (model.UploadJob, error)
	GetUploadJob(ctx context.Context, id string) (model.UploadJob, error)
}

// DefaultPreviewRows bounds the preview sample shown at step 2. The full
// dataset is still parsed and uploaded; only the display is truncated.
const DefaultPreviewRows = 10

// Session is the ephemeral state of one upload attempt. It is destroyed
// on cancel or completion and never persisted.
//
// Session is safe for concurrent use: interactive frontends read state
// from the UI goroutine while step transitions and job polling run on
// worker goroutines. Backend calls are made without holding the lock;
// their results are applied only after re-checking the generation, so a
// cancel or remap that lands mid-flight discards the late response.
type Session struct {
	backend      Backend
	parser       *spreadsheet.Parser
	table        *spreadsheet.Table
	validation   *model.ValidationResult
	job          *model.UploadJob
	poller       *poll.Poller
	id           string
	filePath     string
	format       spreadsheet.Format
	mapping      model.ColumnMapping
	pollInterval time.Duration
	mu           sync.Mutex
	step         Step
	generation   int
	skipInvalid  bool
	cancelled    bool
}

// Option configures a Session.
type Option func(*Session)

// WithPollInterval overrides the job-status poll interval.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Session) { s.pollInterval = interval }
}

// NewSession creates a wizard session at step 1.
func NewSession(parser *spreadsheet.Parser, backend Backend, opts ...Option) *Session {
	s := &Session{
		id:           uuid.NewString(),
		parser:       parser,
		backend:      backend,
		mapping:      model.ColumnMapping{},
		pollInterval: poll.DefaultInterval,
		step:         StepSelectFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identity used to guard against stale results.
func (s *Session) ID() string { return s.id }

// Step returns the current wizard step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Cancelled reports whether the session has been discarded.
func (s *Session) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// guardActive must be called with the lock held.
func (s *Session) guardActive() error {
	if s.cancelled {
		return ErrSessionCancelled
	}
	return nil
}

// SelectFile records the chosen file at step 1. Unsupported extensions
// fail with an UnsupportedFormatError and the session stays at step 1.
// Choosing a different file discards the previous file's parsed table,
// mapping, and validation result.
func (s *Session) SelectFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardActive(); err != nil {
		return err
	}

	format, err := spreadsheet.DetectFormat(path)
	if err != nil {
		return err
	}

	if path != s.filePath {
		s.table = nil
		s.mapping = model.ColumnMapping{}
		s.validation = nil
		s.generation++
	}
	s.filePath = path
	s.format = format
	return nil
}

// FilePath returns the selected file, if any.
func (s *Session) FilePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filePath
}

// Next advances the wizard one step, enforcing the transition guards.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	if err := s.guardActive(); err != nil {
		s.mu.Unlock()
		return err
	}
	step := s.step
	s.mu.Unlock()

	switch step {
	case StepSelectFile:
		return s.advanceToPreview(ctx)
	case StepPreview:
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.guardActive(); err != nil {
			return err
		}
		s.step = StepMapColumns
		if len(s.mapping) == 0 {
			s.mapping = AutoDetectMapping(s.table.Headers)
		}
		return nil
	case StepMapColumns:
		return s.advanceToValidate(ctx)
	case StepValidate:
		return s.advanceToUpload(ctx)
	default:
		return fmt.Errorf("cannot advance past step %s", step)
	}
}

// Back moves one step backward without losing any entered state.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guardActive(); err != nil {
		return err
	}
	if s.step == StepUpload {
		return ErrAlreadyUploading
	}
	if s.step > StepSelectFile {
		s.step--
	}
	return nil
}

// Cancel discards the session. No server-side effect exists before step 5,
// and any in-flight poll is stopped; late responses are ignored.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.generation++
	poller := s.poller
	id, step := s.id, s.step
	s.mu.Unlock()

	if poller != nil {
		poller.Cancel()
	}
	slog.Debug("upload session cancelled", "session_id", id, "step", step.String())
}

func (s *Session) advanceToPreview(ctx context.Context) error {
	s.mu.Lock()
	if s.filePath == "" {
		s.mu.Unlock()
		return ErrNoFileSelected
	}
	path, format, generation := s.filePath, s.format, s.generation
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	table, err := s.parser.ReadTable(ctx, f, format)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || generation != s.generation {
		return ErrSessionCancelled
	}
	s.table = table
	s.step = StepPreview
	return nil
}

// Headers returns the detected source headers (available from step 2).
func (s *Session) Headers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return nil
	}
	return s.table.Headers
}

// RowCount returns the number of data rows in the selected file.
func (s *Session) RowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return 0
	}
	return s.table.RowCount()
}

// PreviewRows returns a bounded sample of the data rows.
func (s *Session) PreviewRows(limit int) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultPreviewRows
	}
	if limit > len(s.table.Rows) {
		limit = len(s.table.Rows)
	}
	return s.table.Rows[:limit]
}

// Mapping returns a copy of the current column mapping.
func (s *Session) Mapping() model.ColumnMapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.mapping)
}

// MapColumn assigns a source column to a target field. Any earlier
// validation result is invalidated.
func (s *Session) MapColumn(source, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapping[source] = target
	s.invalidateValidation()
}

// IgnoreColumn marks a source column as intentionally unimported.
func (s *Session) IgnoreColumn(source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapping[source] = model.IgnoredField
	s.invalidateValidation()
}

// ApplyTemplate overlays a saved mapping template, keeping only entries
// whose source columns exist in the selected file.
func (s *Session) ApplyTemplate(template model.MappingTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return
	}
	present := make(map[string]bool, len(s.table.Headers))
	for _, h := range s.table.Headers {
		present[h] = true
	}
	for source, target := range template.Mapping {
		if present[source] {
			s.mapping[source] = target
		}
	}
	s.invalidateValidation()
}

// invalidateValidation must be called with the lock held.
func (s *Session) invalidateValidation() {
	s.validation = nil
	s.generation++
}

// SetSkipInvalid toggles the policy permitting upload despite invalid rows.
func (s *Session) SetSkipInvalid(skip bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipInvalid = skip
}

// SkipInvalid reports the current skip policy.
func (s *Session) SkipInvalid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipInvalid
}

// Validation returns the most recent validation result, or nil before the
// validate step has run.
func (s *Session) Validation() *model.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validation
}

// Records builds the full mapped record set for validation and upload.
func (s *Session) Records() []model.ProcurementRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordsLocked()
}

// recordsLocked must be called with the lock held.
func (s *Session) recordsLocked() []model.ProcurementRecord {
	if s.table == nil {
		return nil
	}
	return spreadsheet.RecordsFromTable(s.table, s.mapping)
}

func (s *Session) advanceToValidate(ctx context.Context) error {
	s.mu.Lock()
	if missing := s.mapping.MissingTargets(); len(missing) > 0 {
		s.mu.Unlock()
		return &MappingIncompleteError{Missing: missing}
	}
	generation := s.generation
	req := api.ValidateRequest{
		Mapping: maps.Clone(s.mapping),
		Records: s.recordsLocked(),
	}
	s.mu.Unlock()

	result, err := s.backend.ValidateUpload(ctx, req)
	if err != nil {
		// The session stays at step 3 so the user can retry without
		// restarting the wizard.
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Discard late results if the session moved underneath the request.
	if s.cancelled || generation != s.generation {
		return ErrSessionCancelled
	}

	s.validation = &result
	s.step = StepValidate

	slog.Debug("validation complete",
		"session_id", s.id,
		"valid_rows", result.ValidRows,
		"invalid_rows", result.InvalidRows)

	return nil
}

func (s *Session) advanceToUpload(ctx context.Context) error {
	s.mu.Lock()
	if s.validation == nil {
		s.mu.Unlock()
		return ErrNotValidated
	}
	if !s.validation.Clean() && !s.skipInvalid {
		invalid := s.validation.InvalidRows
		s.mu.Unlock()
		return &ValidationBlockedError{InvalidRows: invalid}
	}
	generation := s.generation
	req := api.UploadRequest{
		Filename:    s.filePath,
		Records:     s.recordsLocked(),
		SkipInvalid: s.skipInvalid,
	}
	s.mu.Unlock()

	job, err := s.backend.CreateUploadJob(ctx, req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled || generation != s.generation {
		return ErrSessionCancelled
	}

	s.job = &job
	s.step = StepUpload
	return nil
}

// Job returns the created upload job, or nil before step 5.
func (s *Session) Job() *model.UploadJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job
}

// AwaitUpload polls the upload job until it reaches a terminal state,
// invoking onProgress with each snapshot. It returns the final job.
func (s *Session) AwaitUpload(ctx context.Context, onProgress func(model.UploadJob)) (*model.UploadJob, error) {
	s.mu.Lock()
	if err := s.guardActive(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.job == nil {
		s.mu.Unlock()
		return nil, ErrNotValidated
	}
	jobID := s.job.ID
	poller := poll.New(s.pollInterval)
	s.poller = poller
	s.mu.Unlock()

	err := poller.Run(ctx, func(pollCtx context.Context) (bool, error) {
		job, err := s.backend.GetUploadJob(pollCtx, jobID)
		if err != nil {
			return false, err
		}

		s.mu.Lock()
		if s.cancelled {
			s.mu.Unlock()
			// Stale result after cancellation; never applied.
			return true, nil
		}
		s.job = &job
		s.mu.Unlock()

		if onProgress != nil {
			onProgress(job)
		}
		return job.Status.Terminal(), nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return nil, ErrSessionCancelled
	}
	if s.job.Status == model.JobFailed {
		return s.job, fmt.Errorf("upload job failed: %s", s.job.Error)
	}
	return s.job, nil
}
