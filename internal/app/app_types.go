package app

// FileResult reports a file written or read through a dialog.
type FileResult struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}
