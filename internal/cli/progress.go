package cli

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// NewUploadProgress creates the progress bar shown while an upload job is
// polled. totalRows may be zero when the backend has not sized the job yet;
// the bar is resized on the first snapshot that carries a total.
func NewUploadProgress(w io.Writer, totalRows int) *progressbar.ProgressBar {
	if totalRows <= 0 {
		totalRows = -1 // spinner mode until the total is known
	}

	return progressbar.NewOptions(totalRows,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Uploading records...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
	)
}
