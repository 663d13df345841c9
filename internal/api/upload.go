package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
)

// ValidateRequest describes mapped upload data for server-side validation.
type ValidateRequest struct {
	Mapping model.ColumnMapping       `json:"mapping"`
	Records []model.ProcurementRecord `json:"records"`
}

// ValidateUpload submits mapped rows for validation and returns per-row
// results. Nothing is committed; the upload job is a separate call.
func (c *Client) ValidateUpload(ctx context.Context, req ValidateRequest) (model.ValidationResult, error) {
	var result model.ValidationResult
	if err := c.do(ctx, http.MethodPost, "/api/uploads/validate/", req, &result); err != nil {
		return model.ValidationResult{}, err
	}
	return result, nil
}

// UploadRequest starts a server-side import of the given records.
type UploadRequest struct {
	Filename    string                    `json:"filename"`
	Records     []model.ProcurementRecord `json:"records"`
	SkipInvalid bool                      `json:"skip_invalid"`
}

// CreateUploadJob creates an asynchronous import job and returns its
// initial snapshot.
func (c *Client) CreateUploadJob(ctx context.Context, req UploadRequest) (model.UploadJob, error) {
	var job model.UploadJob
	if err := c.do(ctx, http.MethodPost, "/api/uploads/", req, &job); err != nil {
		return model.UploadJob{}, err
	}
	return job, nil
}

// GetUploadJob fetches the current snapshot of an import job.
func (c *Client) GetUploadJob(ctx context.Context, id string) (model.UploadJob, error) {
	var job model.UploadJob
	if err := c.get(ctx, fmt.Sprintf("/api/uploads/%s/", id), &job); err != nil {
		return model.UploadJob{}, err
	}
	return job, nil
}

// ListMappingTemplates returns the saved column-mapping templates.
func (c *Client) ListMappingTemplates(ctx context.Context) ([]model.MappingTemplate, error) {
	var templates []model.MappingTemplate
	if err := c.get(ctx, "/api/mapping-templates/", &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// SaveMappingTemplate stores a named column mapping for reuse on recurring
// file layouts.
func (c *Client) SaveMappingTemplate(ctx context.Context, name string, mapping model.ColumnMapping) (model.MappingTemplate, error) {
	req := struct {
		Name    string              `json:"name"`
		Mapping model.ColumnMapping `json:"mapping"`
	}{Name: name, Mapping: mapping}

	var template model.MappingTemplate
	if err := c.do(ctx, http.MethodPost, "/api/mapping-templates/", req, &template); err != nil {
		return model.MappingTemplate{}, err
	}
	return template, nil
}
