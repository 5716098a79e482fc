// Package pipeline 定义了报告文本提取的核心流程。
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"med-assist-go/internal/assistant"
	"med-assist-go/internal/config"
	"med-assist-go/internal/model"
	"med-assist-go/internal/repository"
	"med-assist-go/pkg/es"
	"med-assist-go/pkg/log"
	"med-assist-go/pkg/storage"
	"med-assist-go/pkg/tasks"
	"med-assist-go/pkg/tika"
)

// Processor 封装了报告处理的所有依赖和逻辑。
type Processor struct {
	tikaClient       *tika.Client
	esCfg            config.ElasticsearchConfig
	minioCfg         config.MinIOConfig
	fileRepo         repository.FileRepository
	conversationRepo repository.ConversationRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	tikaClient *tika.Client,
	esCfg config.ElasticsearchConfig,
	minioCfg config.MinIOConfig,
	fileRepo repository.FileRepository,
	conversationRepo repository.ConversationRepository,
) *Processor {
	return &Processor{
		tikaClient:       tikaClient,
		esCfg:            esCfg,
		minioCfg:         minioCfg,
		fileRepo:         fileRepo,
		conversationRepo: conversationRepo,
	}
}

// Process 是报告处理的主函数：下载原始文件，提取纯文本，缓存到
// Redis 并索引到 Elasticsearch。ES 文档以 file_id 为主键，重复处理
// 是幂等的。不可恢复的内容问题（二进制且无 Tika）标记为失败后吞掉，
// 避免 Kafka 无意义重试。
func (p *Processor) Process(ctx context.Context, task tasks.ReportProcessingTask) error {
	log.Infof("[Processor] 开始处理报告, FileID: %s, FileName: %s, UserID: %d", task.FileID, task.FileName, task.UserID)

	// 1. 从 MinIO 下载文件
	log.Infof("[Processor] 步骤1: 从MinIO下载文件, Bucket: %s, Object: %s", p.minioCfg.BucketName, task.ObjectName)
	data, err := storage.GetObjectBytes(ctx, p.minioCfg.BucketName, task.ObjectName)
	if err != nil {
		log.Errorf("[Processor] 从MinIO下载文件失败, Object: %s, Error: %v", task.ObjectName, err)
		return fmt.Errorf("从 MinIO 下载文件失败: %w", err)
	}
	if len(data) == 0 {
		log.Warnf("[Processor] 文件 '%s' 内容为空, 处理中止", task.FileName)
		p.markFailed(task.FileID)
		return nil
	}
	log.Infof("[Processor] 步骤1: 文件下载成功, 大小: %d字节", len(data))

	// 2. 提取文本：先走内置的纯文本提取，二进制格式回退到 Tika
	log.Info("[Processor] 步骤2: 提取文本内容")
	textContent, err := p.extractText(data, task)
	if err != nil {
		log.Warnf("[Processor] 无法提取文本, FileID: %s, Error: %v", task.FileID, err)
		p.markFailed(task.FileID)
		return nil
	}
	if textContent == "" {
		log.Warnf("[Processor] 提取的文本内容为空, FileID: %s", task.FileID)
		p.markFailed(task.FileID)
		return nil
	}
	log.Infof("[Processor] 步骤2: 文本提取成功, 内容长度: %d 字符", utf8.RuneCountInString(textContent))

	// 3. 缓存全文到 Redis，助手分析时无需再次下载
	log.Info("[Processor] 步骤3: 缓存报告全文到 Redis")
	if err := p.conversationRepo.SaveReportText(ctx, task.FileID, textContent); err != nil {
		log.Errorf("[Processor] 缓存报告全文失败, FileID: %s, Error: %v", task.FileID, err)
		return fmt.Errorf("缓存报告全文失败: %w", err)
	}

	// 4. 索引到 Elasticsearch
	log.Info("[Processor] 步骤4: 索引报告全文到 Elasticsearch")
	doc := model.ReportDocument{
		FileID:      task.FileID,
		FileName:    task.FileName,
		TextContent: textContent,
		UserID:      task.UserID,
		UploadedAt:  task.UploadedAt,
	}
	if err := es.IndexReportDocument(ctx, p.esCfg.IndexName, doc); err != nil {
		log.Errorf("[Processor] 索引报告到Elasticsearch失败, FileID: %s, Error: %v", task.FileID, err)
		return fmt.Errorf("索引报告到 Elasticsearch 失败: %w", err)
	}

	// 5. 更新处理状态
	if err := p.fileRepo.UpdateStatus(task.FileID, model.ReportStatusCompleted); err != nil {
		log.Errorf("[Processor] 更新报告状态失败, FileID: %s, Error: %v", task.FileID, err)
		return fmt.Errorf("更新报告状态失败: %w", err)
	}

	log.Infof("[Processor] 报告处理成功完成, FileID: %s", task.FileID)
	return nil
}

// extractText 优先使用内置纯文本提取；二进制格式在配置了 Tika 时
// 交给 Tika 处理 PDF、Word 等富文档。
func (p *Processor) extractText(data []byte, task tasks.ReportProcessingTask) (string, error) {
	text, err := assistant.ExtractText(data, task.FileName, task.ContentType)
	if err == nil {
		return text, nil
	}

	if errors.Is(err, assistant.ErrBinaryFormat) && p.tikaClient.Enabled() {
		log.Infof("[Processor] 二进制格式, 回退到 Tika 提取, FileName: %s", task.FileName)
		return p.tikaClient.ExtractText(bytes.NewReader(data), task.FileName)
	}

	return "", err
}

func (p *Processor) markFailed(fileID string) {
	if err := p.fileRepo.UpdateStatus(fileID, model.ReportStatusFailed); err != nil {
		log.Errorf("[Processor] 标记报告失败状态出错, FileID: %s, Error: %v", fileID, err)
	}
}
