package models

import "time"

const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

// ExportRequest is the payload for POST /api/admin/exports. Zero times default
// to the last 30 days.
type ExportRequest struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Format string    `json:"format" binding:"omitempty,oneof=xlsx csv"`
}

type ExportResult struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	URL   string `json:"url,omitempty"`
}

// ExportArtifact describes a stored export file.
type ExportArtifact struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}
