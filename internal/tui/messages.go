package tui

import "github.com/DefoxxAnalytics/versatex-analytics/internal/model"

// advancedMsg reports the outcome of a session step transition.
type advancedMsg struct {
	err error
}

// uploadProgressMsg carries a job snapshot from the background poller.
type uploadProgressMsg struct {
	job model.UploadJob
}

// uploadDoneMsg reports the final job state, or the error that ended polling.
type uploadDoneMsg struct {
	job *model.UploadJob
	err error
}
