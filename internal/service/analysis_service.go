package service

import (
	"context"
	"encoding/json"
	"log"

	"github-issue-scout/internal/adapter/cache"
	"github-issue-scout/internal/config"
	"github-issue-scout/internal/domain"
	"github-issue-scout/internal/port"
)

// AnalysisService 带缓存的 AI 鉴定层
// 每条 issue 先查缓存，命中就直接复用，未命中才调 AI（这是最大的成本开关）
type AnalysisService struct {
	appraiser port.Appraiser
	cache     port.AnalysisCache
	labels    port.LabelMapper
}

// NewAnalysisService 创建分析服务
func NewAnalysisService(appraiser port.Appraiser, analysisCache port.AnalysisCache, labels port.LabelMapper) *AnalysisService {
	return &AnalysisService{
		appraiser: appraiser,
		cache:     analysisCache,
		labels:    labels,
	}
}

// ProgressFunc 批量分析的进度回调，在处理第 i 条（从1开始）之前调用
type ProgressFunc func(current, total int, title string)

// Analyze 鉴定单条 issue，透过缓存
//
// 缓存 key 掺入了 issue 的 updated_at 和用户画像：
// issue 被编辑过或用户换了画像，自然就是一次全新的鉴定
func (s *AnalysisService) Analyze(ctx context.Context, issue *domain.Issue, prefs domain.Preferences) (*domain.Analysis, error) {
	key := cache.AnalysisKey(issue.RepoName, issue.ID, issue.UpdatedAt, prefs.Skill, prefs.Time)

	if data, ok := s.cache.Get(key); ok {
		var analysis domain.Analysis
		if err := json.Unmarshal(data, &analysis); err == nil {
			return &analysis, nil
		}
		// 缓存条目坏了就当未命中，重新鉴定
		log.Printf("⚠️ 缓存条目损坏，重新鉴定 %s", issue.Key())
	}

	// 标签映射给出难度提示，作为 AI 的参考上下文
	hint := domain.DifficultyUnknown
	if mapped, ok := s.labels.DifficultyHint(issue.RepoName, issue.Labels); ok {
		hint = mapped
	}

	analysis, err := s.appraiser.Appraise(ctx, issue, prefs, hint)
	if err != nil {
		return nil, err
	}

	// AI 返回的结构必须完整合法，否则这条 issue 不可用
	if err := analysis.Validate(); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(analysis); err == nil {
		if err := s.cache.Set(key, data, config.AnalysisCacheTTL); err != nil {
			// 缓存写失败只影响下次的成本，不影响本次结果
			log.Printf("⚠️ 写入分析缓存失败: %v", err)
		}
	}
	return analysis, nil
}

// AnalyzeBatch 顺序鉴定一批 issue
//
// 刻意不并发：免费档的 LLM API 有严格的每分钟配额，顺序调用天然就是限流
// 单条失败（API 报错、结构校验不过）记日志后跳过，不拖垮整批
// 输出保持输入顺序，排序是评分引擎的事
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, issues []*domain.Issue, prefs domain.Preferences, onProgress ProgressFunc) []*domain.AnalyzedIssue {
	analyzed := make([]*domain.AnalyzedIssue, 0, len(issues))

	for i, issue := range issues {
		select {
		case <-ctx.Done():
			log.Printf("⏰ 批量分析被取消，已完成 %d/%d 条", len(analyzed), len(issues))
			return analyzed
		default:
		}

		if onProgress != nil {
			onProgress(i+1, len(issues), issue.Title)
		}

		analysis, err := s.Analyze(ctx, issue, prefs)
		if err != nil {
			log.Printf("❌ 鉴定 %s 失败: %v，跳过该条", issue.Key(), err)
			continue
		}

		analyzed = append(analyzed, &domain.AnalyzedIssue{Issue: issue, Analysis: analysis})
	}

	return analyzed
}
