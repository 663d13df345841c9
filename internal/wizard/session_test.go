package wizard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/api"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/spreadsheet"
)

// mockBackend implements Backend for tests. The onValidate/onCreate hooks
// run while the request is "in flight", before the result is returned.
type mockBackend struct {
	onValidate     func()
	onCreate       func()
	validateErr    error
	createErr      error
	statusErr      error
	validateResult model.ValidationResult
	jobStatuses    []model.JobStatus
	validateCalls  int
	createCalls    int
	statusCalls    int
}

func (m *mockBackend) ValidateUpload(_ context.Context, _ api.ValidateRequest) (model.ValidationResult, error) {
	m.validateCalls++
	if m.onValidate != nil {
		m.onValidate()
	}
	if m.validateErr != nil {
		return model.ValidationResult{}, m.validateErr
	}
	return m.validateResult, nil
}

func (m *mockBackend) CreateUploadJob(_ context.Context, _ api.UploadRequest) (model.UploadJob, error) {
	m.createCalls++
	if m.onCreate != nil {
		m.onCreate()
	}
	if m.createErr != nil {
		return model.UploadJob{}, m.createErr
	}
	return model.UploadJob{ID: "job-1", Status: model.JobQueued}, nil
}

func (m *mockBackend) GetUploadJob(_ context.Context, id string) (model.UploadJob, error) {
	m.statusCalls++
	if m.statusErr != nil {
		return model.UploadJob{}, m.statusErr
	}
	idx := m.statusCalls - 1
	if idx >= len(m.jobStatuses) {
		idx = len(m.jobStatuses) - 1
	}
	status := m.jobStatuses[idx]
	return model.UploadJob{
		ID:            id,
		Status:        status,
		ProcessedRows: m.statusCalls * 10,
		TotalRows:     len(m.jobStatuses) * 10,
	}, nil
}

func writeTestCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spend.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

const testCSV = `Supplier,Category,Subcategory,Amount,Date,Location
Acme Corp,IT Hardware,Laptops,1250.50,2024-01-15,Austin
Globex,Facilities,Cleaning,480,2024-02-01,Chicago
`

func newTestSession(t *testing.T, backend Backend) *Session {
	t.Helper()
	return NewSession(spreadsheet.NewParser(), backend, WithPollInterval(time.Millisecond))
}

func TestSession_HappyPath(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{
		validateResult: model.ValidationResult{ValidRows: 2},
		jobStatuses:    []model.JobStatus{model.JobQueued, model.JobProcessing, model.JobCompleted},
	}
	s := newTestSession(t, backend)

	assert.Equal(t, StepSelectFile, s.Step())
	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))

	// 1 -> 2: parse and preview.
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, StepPreview, s.Step())
	assert.Equal(t, []string{"Supplier", "Category", "Subcategory", "Amount", "Date", "Location"}, s.Headers())
	assert.Equal(t, 2, s.RowCount())
	assert.Len(t, s.PreviewRows(10), 2)

	// 2 -> 3: auto mapping detected.
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, StepMapColumns, s.Step())
	assert.Empty(t, s.Mapping().MissingTargets())

	// 3 -> 4: validation runs against the backend.
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, StepValidate, s.Step())
	assert.Equal(t, 1, backend.validateCalls)
	require.NotNil(t, s.Validation())
	assert.True(t, s.Validation().Clean())

	// 4 -> 5: job created.
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, StepUpload, s.Step())
	require.NotNil(t, s.Job())

	var snapshots []model.UploadJob
	job, err := s.AwaitUpload(ctx, func(j model.UploadJob) { snapshots = append(snapshots, j) })
	require.NoError(t, err)
	assert.Equal(t, model.JobCompleted, job.Status)
	assert.GreaterOrEqual(t, len(snapshots), 1)
}

func TestSession_RejectsUnsupportedFile(t *testing.T) {
	s := newTestSession(t, &mockBackend{})

	err := s.SelectFile("spend.pdf")
	var unsupported *spreadsheet.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)

	// State remains at step 1 with no file.
	assert.Equal(t, StepSelectFile, s.Step())
	assert.Empty(t, s.FilePath())
	assert.ErrorIs(t, s.Next(context.Background()), ErrNoFileSelected)
}

func TestSession_MappingGuard(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{validateResult: model.ValidationResult{ValidRows: 1}}
	s := newTestSession(t, backend)

	// Headers that auto-detection cannot fully resolve.
	csv := "Who,What,HowMuch,When\nAcme,IT,100,2024-01-01\n"
	require.NoError(t, s.SelectFile(writeTestCSV(t, csv)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))

	err := s.Next(ctx)
	var incomplete *MappingIncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.Missing, "Supplier")
	assert.Equal(t, StepMapColumns, s.Step())
	assert.Zero(t, backend.validateCalls)

	// Resolve the mapping manually and proceed.
	s.MapColumn("Who", "Supplier")
	s.MapColumn("What", "Category")
	s.MapColumn("HowMuch", "Amount")
	s.MapColumn("When", "Date")
	s.MapColumn("Who2", "Subcategory") // unknown source column is harmless
	s.IgnoreColumn("Unused")

	err = s.Next(ctx)
	require.ErrorAs(t, err, &incomplete)

	s.MapColumn("Who2", "Subcategory")
	s.MapColumn("Extra", "Location")
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, StepValidate, s.Step())
}

func TestSession_SkipInvalidPolicy(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{
		validateResult: model.ValidationResult{
			ValidRows:   1,
			InvalidRows: 1,
			Errors:      []model.RowError{{Row: 2, Severity: "error", Message: "bad amount"}},
		},
		jobStatuses: []model.JobStatus{model.JobCompleted},
	}
	s := newTestSession(t, backend)

	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))

	// Blocked: invalid rows present, skip disabled.
	err := s.Next(ctx)
	var blocked *ValidationBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, 1, blocked.InvalidRows)
	assert.Equal(t, StepValidate, s.Step())

	// Enabling the policy unblocks the transition.
	s.SetSkipInvalid(true)
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, StepUpload, s.Step())
}

func TestSession_BackKeepsState(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{validateResult: model.ValidationResult{ValidRows: 2}}
	s := newTestSession(t, backend)

	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))

	mapping := s.Mapping()
	require.NoError(t, s.Back())
	assert.Equal(t, StepPreview, s.Step())

	// Forward again: parsed table and mapping are retained.
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, StepMapColumns, s.Step())
	assert.Equal(t, mapping, s.Mapping())
	assert.Equal(t, 2, s.RowCount())
}

func TestSession_ValidationFailureKeepsStep(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{validateErr: errors.New("backend down")}
	s := newTestSession(t, backend)

	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))

	// Network failure does not corrupt session state; retry is possible.
	require.Error(t, s.Next(ctx))
	assert.Equal(t, StepMapColumns, s.Step())

	backend.validateErr = nil
	backend.validateResult = model.ValidationResult{ValidRows: 2}
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, StepValidate, s.Step())
}

func TestSession_CancelBlocksFurtherUse(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &mockBackend{})

	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))
	require.NoError(t, s.Next(ctx))

	s.Cancel()
	assert.True(t, s.Cancelled())
	assert.ErrorIs(t, s.Next(ctx), ErrSessionCancelled)
	assert.ErrorIs(t, s.Back(), ErrSessionCancelled)
	assert.ErrorIs(t, s.SelectFile("other.csv"), ErrSessionCancelled)
}

func TestSession_CancelDuringValidationDiscardsResult(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{validateResult: model.ValidationResult{ValidRows: 2}}
	s := newTestSession(t, backend)
	backend.onValidate = s.Cancel

	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))

	assert.ErrorIs(t, s.Next(ctx), ErrSessionCancelled)
	assert.Nil(t, s.Validation())
	assert.Equal(t, StepMapColumns, s.Step())
}

func TestSession_RemapDuringValidationDiscardsResult(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{validateResult: model.ValidationResult{ValidRows: 2}}
	s := newTestSession(t, backend)
	backend.onValidate = func() { s.MapColumn("Supplier", "Supplier") }

	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))

	// The remap superseded the in-flight request; its result never lands.
	assert.ErrorIs(t, s.Next(ctx), ErrSessionCancelled)
	assert.Nil(t, s.Validation())
	assert.Equal(t, StepMapColumns, s.Step())

	// The next validation round succeeds against the new mapping.
	backend.onValidate = nil
	require.NoError(t, s.Next(ctx))
	assert.Equal(t, StepValidate, s.Step())
	assert.NotNil(t, s.Validation())
}

func TestSession_CancelDuringJobCreationDiscardsJob(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{validateResult: model.ValidationResult{ValidRows: 2}}
	s := newTestSession(t, backend)
	backend.onCreate = s.Cancel

	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))

	assert.ErrorIs(t, s.Next(ctx), ErrSessionCancelled)
	assert.Nil(t, s.Job())

	_, err := s.AwaitUpload(ctx, nil)
	assert.ErrorIs(t, err, ErrSessionCancelled)
}

func TestSession_ConcurrentReadsDuringAdvance(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{
		validateResult: model.ValidationResult{ValidRows: 2},
		jobStatuses:    []model.JobStatus{model.JobProcessing, model.JobCompleted},
	}
	s := newTestSession(t, backend)
	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))

	done := make(chan error, 1)
	go func() {
		var err error
		for step := s.Step(); step != StepUpload && err == nil; step = s.Step() {
			err = s.Next(ctx)
		}
		done <- err
	}()

	// Read the session the way an interactive view does while transitions
	// run on another goroutine.
	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			assert.Equal(t, StepUpload, s.Step())
			return
		default:
			_ = s.Step()
			_ = s.Headers()
			_ = s.RowCount()
			_ = s.PreviewRows(5)
			_ = s.Mapping()
			_ = s.Validation()
			_ = s.Job()
			_ = s.FilePath()
			_ = s.Cancelled()
		}
	}
}

func TestSession_ReselectingFileResetsState(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{validateResult: model.ValidationResult{ValidRows: 2}}
	s := newTestSession(t, backend)

	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))
	require.Empty(t, s.Mapping().MissingTargets())

	require.NoError(t, s.Back())
	require.NoError(t, s.Back())

	// A different file drops the old table and mapping, so the old file's
	// columns can no longer satisfy the mapping guard.
	other := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(other, []byte("Vendor,Total\nAcme,100\n"), 0600))
	require.NoError(t, s.SelectFile(other))
	assert.Nil(t, s.Headers())
	assert.Empty(t, s.Mapping())
	assert.Nil(t, s.Validation())

	require.NoError(t, s.Next(ctx))
	assert.Equal(t, []string{"Vendor", "Total"}, s.Headers())
	require.NoError(t, s.Next(ctx))

	err := s.Next(ctx)
	var incomplete *MappingIncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.Missing, "Date")
	assert.Zero(t, backend.validateCalls)
}

func TestSession_RemappingInvalidatesValidation(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{validateResult: model.ValidationResult{ValidRows: 2}}
	s := newTestSession(t, backend)

	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))
	require.NotNil(t, s.Validation())

	require.NoError(t, s.Back())
	s.MapColumn("Supplier", "Supplier")
	assert.Nil(t, s.Validation())
}

func TestSession_ApplyTemplate(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &mockBackend{validateResult: model.ValidationResult{ValidRows: 1}})

	csv := "Vendor,Group,Sub,Total,When,Where\nAcme,IT,Laptops,100,2024-01-01,Austin\n"
	require.NoError(t, s.SelectFile(writeTestCSV(t, csv)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))

	s.ApplyTemplate(model.MappingTemplate{
		Name: "ERP Export",
		Mapping: model.ColumnMapping{
			"Vendor":        "Supplier",
			"Group":         "Category",
			"Sub":           "Subcategory",
			"Total":         "Amount",
			"When":          "Date",
			"Where":         "Location",
			"MissingColumn": "Amount", // not in the file; must not apply
		},
	})

	mapping := s.Mapping()
	assert.Equal(t, "Supplier", mapping["Vendor"])
	assert.NotContains(t, mapping, "MissingColumn")
	assert.Empty(t, mapping.MissingTargets())

	require.NoError(t, s.Next(ctx))
	assert.Equal(t, StepValidate, s.Step())
}

func TestSession_UploadJobFailure(t *testing.T) {
	ctx := context.Background()
	backend := &mockBackend{
		validateResult: model.ValidationResult{ValidRows: 2},
		jobStatuses:    []model.JobStatus{model.JobProcessing, model.JobFailed},
	}
	s := newTestSession(t, backend)

	require.NoError(t, s.SelectFile(writeTestCSV(t, testCSV)))
	for s.Step() != StepUpload {
		require.NoError(t, s.Next(ctx))
	}

	job, err := s.AwaitUpload(ctx, nil)
	require.Error(t, err)
	require.NotNil(t, job)
	assert.Equal(t, model.JobFailed, job.Status)
}

func TestSession_MappedRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &mockBackend{})

	csv := "Vendor,Spend Category,Total,Invoice Date\nAcme,IT,\"$1,000\",45292\n"
	require.NoError(t, s.SelectFile(writeTestCSV(t, csv)))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))

	records := s.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].Supplier)
	assert.Equal(t, "IT", records[0].Category)
	assert.InDelta(t, 1000.0, records[0].Amount, 0.001)
	assert.Equal(t, "2024-01-01", records[0].Date)
}
