// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// ReportProcessingTask represents the data structure for a report text-extraction job.
type ReportProcessingTask struct {
	FileID      string `json:"file_id"`
	ObjectName  string `json:"object_name"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	UserID      uint   `json:"user_id"`
	UploadedAt  int64  `json:"uploaded_at"`
}
