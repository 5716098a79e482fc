package service

import (
	"context"
	"errors"
	"io"
	"time"

	"med-assist-go/internal/config"
	"med-assist-go/internal/model"
	"med-assist-go/internal/repository"
	"med-assist-go/pkg/es"
	"med-assist-go/pkg/kafka"
	"med-assist-go/pkg/log"
	"med-assist-go/pkg/storage"
	"med-assist-go/pkg/tasks"
	"med-assist-go/pkg/token"

	"gorm.io/gorm"
)

// 文件操作的业务错误。
var (
	ErrFileNotFound = errors.New("file not found")
	ErrNotFileOwner = errors.New("file does not belong to this user")
	ErrEmptyUpload  = errors.New("uploaded file is empty")
	ErrFileTooLarge = errors.New("uploaded file exceeds the size limit")
)

// 单个报告文件的大小上限。
const maxReportSize = 20 << 20 // 20MB

// FileService 接口定义了医疗报告文件的业务操作。
type FileService interface {
	Upload(ctx context.Context, userID uint, fileName, contentType string, size int64, reader io.Reader) (*model.MedicalFile, error)
	List(userID uint) ([]model.ReportFileDTO, error)
	Delete(ctx context.Context, userID uint, fileID string) error
	GetDownloadURL(ctx context.Context, userID uint, fileID string) (string, error)
	GetFileBytes(ctx context.Context, userID uint, fileID string) ([]byte, *model.MedicalFile, error)
}

// fileService 是 FileService 接口的实现。
type fileService struct {
	fileRepo         repository.FileRepository
	conversationRepo repository.ConversationRepository
}

// NewFileService 创建一个新的 FileService 实例。
func NewFileService(fileRepo repository.FileRepository, conversationRepo repository.ConversationRepository) FileService {
	return &fileService{
		fileRepo:         fileRepo,
		conversationRepo: conversationRepo,
	}
}

// Upload 把报告写入 MinIO、登记元数据并投递文本提取任务。
// Kafka 投递失败不阻断上传，仅记录日志，文件停留在 pending 状态。
func (s *fileService) Upload(ctx context.Context, userID uint, fileName, contentType string, size int64, reader io.Reader) (*model.MedicalFile, error) {
	if size <= 0 {
		return nil, ErrEmptyUpload
	}
	if size > maxReportSize {
		return nil, ErrFileTooLarge
	}

	fileID := token.GenerateRandomString(16)
	objectName := "reports/" + fileID

	bucket := config.Conf.MinIO.BucketName
	if err := storage.PutObject(ctx, bucket, objectName, reader, size, contentType); err != nil {
		return nil, err
	}

	file := &model.MedicalFile{
		FileID:      fileID,
		FileName:    fileName,
		Size:        size,
		ContentType: contentType,
		ObjectName:  objectName,
		Status:      model.ReportStatusPending,
		UserID:      userID,
		UploadedAt:  time.Now(),
	}
	if err := s.fileRepo.Create(file); err != nil {
		// 元数据落库失败时回收已写入的对象
		if rmErr := storage.RemoveObject(ctx, bucket, objectName); rmErr != nil {
			log.Errorf("[FileService] 回收 MinIO 对象失败, object: %s, error: %v", objectName, rmErr)
		}
		return nil, err
	}

	task := tasks.ReportProcessingTask{
		FileID:      fileID,
		ObjectName:  objectName,
		FileName:    fileName,
		ContentType: contentType,
		UserID:      userID,
		UploadedAt:  file.UploadedAt.UnixMilli(),
	}
	if err := kafka.ProduceReportTask(task); err != nil {
		log.Errorf("[FileService] 投递报告处理任务失败, fileID: %s, error: %v", fileID, err)
	}

	log.Infof("[FileService] 报告上传成功, fileID: %s, userID: %d", fileID, userID)
	return file, nil
}

// List 按上传时间倒序返回一个用户的全部报告。
func (s *fileService) List(userID uint) ([]model.ReportFileDTO, error) {
	files, err := s.fileRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	result := make([]model.ReportFileDTO, 0, len(files))
	for _, f := range files {
		result = append(result, model.ReportFileDTO{
			FileID:      f.FileID,
			FileName:    f.FileName,
			Size:        f.Size,
			ContentType: f.ContentType,
			Status:      f.Status,
			UploadedAt:  model.LocalTime(f.UploadedAt),
		})
	}
	return result, nil
}

// Delete 删除报告及其所有派生数据：对象、索引、文本缓存和元数据。
func (s *fileService) Delete(ctx context.Context, userID uint, fileID string) error {
	file, err := s.findOwnedFile(userID, fileID)
	if err != nil {
		return err
	}

	bucket := config.Conf.MinIO.BucketName
	if err := storage.RemoveObject(ctx, bucket, file.ObjectName); err != nil {
		log.Errorf("[FileService] 删除 MinIO 对象失败, object: %s, error: %v", file.ObjectName, err)
	}
	if err := es.DeleteReportDocument(ctx, config.Conf.Elasticsearch.IndexName, fileID); err != nil {
		log.Errorf("[FileService] 删除 Elasticsearch 文档失败, fileID: %s, error: %v", fileID, err)
	}
	if err := s.conversationRepo.DeleteReportText(ctx, fileID); err != nil {
		log.Errorf("[FileService] 删除报告文本缓存失败, fileID: %s, error: %v", fileID, err)
	}

	return s.fileRepo.Delete(fileID)
}

// GetDownloadURL 为报告签发一个 15 分钟有效的预签名下载地址。
func (s *fileService) GetDownloadURL(ctx context.Context, userID uint, fileID string) (string, error) {
	file, err := s.findOwnedFile(userID, fileID)
	if err != nil {
		return "", err
	}
	return storage.GetPresignedURL(config.Conf.MinIO.BucketName, file.ObjectName, 15*time.Minute)
}

// GetFileBytes 读取报告原始字节，供助手做即时文本提取。
func (s *fileService) GetFileBytes(ctx context.Context, userID uint, fileID string) ([]byte, *model.MedicalFile, error) {
	file, err := s.findOwnedFile(userID, fileID)
	if err != nil {
		return nil, nil, err
	}

	data, err := storage.GetObjectBytes(ctx, config.Conf.MinIO.BucketName, file.ObjectName)
	if err != nil {
		return nil, nil, err
	}
	return data, file, nil
}

func (s *fileService) findOwnedFile(userID uint, fileID string) (*model.MedicalFile, error) {
	file, err := s.fileRepo.FindByFileID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	if file.UserID != userID {
		return nil, ErrNotFileOwner
	}
	return file, nil
}
