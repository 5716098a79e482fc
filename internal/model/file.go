// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// 报告文本提取的处理状态。
const (
	ReportStatusPending   = 0
	ReportStatusCompleted = 1
	ReportStatusFailed    = 2
)

// MedicalFile 定义了 medical_files 表的 ORM 模型。
// 它记录了每份上传的医疗报告的元数据和提取状态。
type MedicalFile struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	FileID      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"fileId"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"fileName"`
	Size        int64     `gorm:"not null" json:"size"`
	ContentType string    `gorm:"type:varchar(100)" json:"contentType"`
	ObjectName  string    `gorm:"type:varchar(255);not null" json:"-"`
	Status      int       `gorm:"type:tinyint;not null;default:0" json:"status"` // 0: pending, 1: completed, 2: failed
	UserID      uint      `gorm:"index;not null" json:"userId"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploadedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (MedicalFile) TableName() string {
	return "medical_files"
}

// ReportDocument 代表存储在 Elasticsearch 中的报告全文文档。
type ReportDocument struct {
	FileID      string `json:"file_id"`
	FileName    string `json:"file_name"`
	TextContent string `json:"text_content"`
	UserID      uint   `json:"user_id"`
	UploadedAt  int64  `json:"uploaded_at"` // epoch millis
}

// ReportFileDTO 定义了返回给前端的报告列表项结构。
type ReportFileDTO struct {
	FileID      string    `json:"fileId"`
	FileName    string    `json:"fileName"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	Status      int       `json:"status"`
	UploadedAt  LocalTime `json:"uploadedAt"`
}

// SearchResultDTO 定义了返回给前端的报告搜索结果结构。
type SearchResultDTO struct {
	FileID   string  `json:"fileId"`
	FileName string  `json:"fileName"`
	Snippet  string  `json:"snippet"`
	Score    float64 `json:"score"`
}
