package repository

import (
	"med-assist-go/internal/model"

	"gorm.io/gorm"
)

// FileRepository 接口定义了医疗报告文件元数据的持久化操作。
type FileRepository interface {
	Create(file *model.MedicalFile) error
	FindByFileID(fileID string) (*model.MedicalFile, error)
	FindByUserID(userID uint) ([]model.MedicalFile, error)
	UpdateStatus(fileID string, status int) error
	Delete(fileID string) error
}

// fileRepository 是 FileRepository 接口的 GORM 实现。
type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建一个新的 FileRepository 实例。
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

// Create 在数据库中记录一个新上传的报告文件。
func (r *fileRepository) Create(file *model.MedicalFile) error {
	return r.db.Create(file).Error
}

// FindByFileID 根据文件 ID 查找报告记录。
func (r *fileRepository) FindByFileID(fileID string) (*model.MedicalFile, error) {
	var file model.MedicalFile
	err := r.db.Where("file_id = ?", fileID).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// FindByUserID 按上传时间倒序列出一个用户的全部报告。
func (r *fileRepository) FindByUserID(userID uint) ([]model.MedicalFile, error) {
	var files []model.MedicalFile
	err := r.db.Where("user_id = ?", userID).Order("uploaded_at DESC").Find(&files).Error
	return files, err
}

// UpdateStatus 更新报告文本提取的处理状态。
func (r *fileRepository) UpdateStatus(fileID string, status int) error {
	return r.db.Model(&model.MedicalFile{}).Where("file_id = ?", fileID).Update("status", status).Error
}

// Delete 删除报告记录。
func (r *fileRepository) Delete(fileID string) error {
	return r.db.Where("file_id = ?", fileID).Delete(&model.MedicalFile{}).Error
}
