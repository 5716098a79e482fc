// Package service 提供了搜索相关的业务逻辑。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"med-assist-go/internal/config"
	"med-assist-go/internal/model"
	"med-assist-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
)

// SearchService 接口定义了报告全文搜索操作。
type SearchService interface {
	SearchReports(ctx context.Context, userID uint, query string, topK int) ([]model.SearchResultDTO, error)
}

type searchService struct {
	esClient *elasticsearch.Client
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(esClient *elasticsearch.Client) SearchService {
	return &searchService{esClient: esClient}
}

// 搜索结果摘要的最大长度。
const snippetLimit = 200

// SearchReports 在当前用户的报告全文中做 BM25 匹配。
// 过滤条件锁定 user_id，用户永远搜不到别人的报告。
func (s *searchService) SearchReports(ctx context.Context, userID uint, query string, topK int) ([]model.SearchResultDTO, error) {
	if topK <= 0 {
		topK = 10
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"match": map[string]interface{}{
						"text_content": query,
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"user_id": userID},
				},
			},
		},
		"size": topK,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(config.Conf.Elasticsearch.IndexName),
		s.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		log.Errorf("[SearchService] 向 Elasticsearch 发送搜索请求失败: %v", err)
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[SearchService] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.ReportDocument `json:"_source"`
				Score  float64              `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	results := make([]model.SearchResultDTO, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		results = append(results, model.SearchResultDTO{
			FileID:   hit.Source.FileID,
			FileName: hit.Source.FileName,
			Snippet:  makeSnippet(hit.Source.TextContent),
			Score:    hit.Score,
		})
	}

	log.Infof("[SearchService] 搜索完成, query: '%s', userID: %d, 命中 %d 条", query, userID, len(results))
	return results, nil
}

// makeSnippet 截取全文开头作为列表摘要，按 rune 截断避免破坏多字节字符。
func makeSnippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLimit {
		return text
	}
	return string(runes[:snippetLimit]) + "..."
}
