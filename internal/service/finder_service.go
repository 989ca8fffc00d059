package service

import (
	"context"
	"fmt"
	"log"

	"github-issue-scout/internal/common"
	"github-issue-scout/internal/config"
	"github-issue-scout/internal/domain"
	"github-issue-scout/internal/port"
)

// SearchCache 搜索结果缓存的能力接口，由 cache.Manager 实现
type SearchCache interface {
	GetSearchResults(topic, language string, difficulty domain.Difficulty) ([]*domain.Issue, bool)
	SetSearchResults(topic, language string, difficulty domain.Difficulty, issues []*domain.Issue) error
}

// FinderService 处理一次完整的 issue 搜寻
type FinderService struct {
	scouter     port.Scouter
	filter      port.Filter
	analysis    *AnalysisService
	scorer      *Scorer
	searchCache SearchCache
	history     port.Viewlog
}

// FindOptions 单次搜寻的开关
type FindOptions struct {
	HideSeen   bool         // 过滤掉浏览历史里出现过的 issue
	Limit      int          // 最多返回几条（0 表示不限）
	OnProgress ProgressFunc // 逐条分析的进度回调，nil 表示不需要
}

// NewFinderService 创建搜寻服务
func NewFinderService(
	scouter port.Scouter,
	filter port.Filter,
	analysis *AnalysisService,
	scorer *Scorer,
	searchCache SearchCache,
	history port.Viewlog,
) *FinderService {
	return &FinderService{
		scouter:     scouter,
		filter:      filter,
		analysis:    analysis,
		scorer:      scorer,
		searchCache: searchCache,
		history:     history,
	}
}

// FindIssues 执行一次完整的搜寻周期
//
// 流水线：搜索(透过缓存) → 去重过滤 → 截断 → 仓库健康度 → 逐条 AI 鉴定 → 评分排序 → 记录浏览
// 返回按匹配度降序排好的结果
func (f *FinderService) FindIssues(ctx context.Context, prefs domain.Preferences, opts FindOptions) ([]*domain.ScoredIssue, error) {
	// 1. 搜索（先查缓存，15分钟内的同样查询不再打 GitHub）
	issues, fromCache := f.searchCache.GetSearchResults(prefs.Topic, prefs.Language, prefs.Skill)
	if fromCache {
		fmt.Printf("💾 搜索结果来自缓存，共 %d 条\n", len(issues))
	} else {
		fmt.Println("📥 正在搜索 GitHub issue...")
		var err error
		issues, err = f.scouter.Search(ctx, prefs, config.MaxResultsPerSearch)
		if err != nil {
			return nil, err
		}
		fmt.Printf("✅ 搜索到 %d 条开放 issue\n", len(issues))

		if err := f.searchCache.SetSearchResults(prefs.Topic, prefs.Language, prefs.Skill, issues); err != nil {
			log.Printf("⚠️ 写入搜索缓存失败: %v", err)
		}
	}

	// 2. 初筛：缓存里的结果可能已经过时，硬条件本地再过一遍
	issues = f.filter.FilterByAge(issues, config.MaxIssueAgeDays)
	issues = f.filter.FilterUnassigned(issues)

	// 3. 去重过滤
	if opts.HideSeen {
		before := len(issues)
		unseen := make([]*domain.Issue, 0, len(issues))
		for _, issue := range issues {
			if !f.history.IsSeen(issue.RepoName, issue.ID) {
				unseen = append(unseen, issue)
			}
		}
		issues = unseen
		if skipped := before - len(issues); skipped > 0 {
			fmt.Printf("⏭️ 滤掉 %d 条看过的 issue\n", skipped)
		}
	}

	if len(issues) == 0 {
		return nil, common.NewError(common.ErrCodeNotFound, "没有符合条件的 issue，换个主题或语言试试")
	}

	// 4. 截断，控制 AI 成本
	if len(issues) > config.IssuesToAnalyze {
		issues = issues[:config.IssuesToAnalyze]
	}

	// 5. 仓库健康度（每个仓库只探查一次）
	// 放在鉴定之前：搜索接口不返回仓库详情，star 数和简介要靠这次探查补全，
	// AI 的 prompt 里才有真实数据
	healthByRepo := make(map[string]*domain.RepoHealth)
	for _, issue := range issues {
		if _, done := healthByRepo[issue.RepoName]; done {
			continue
		}
		health, err := f.scouter.CheckRepoHealth(ctx, issue.RepoName)
		if err != nil {
			// 健康度拿不到不阻断流程，评分时给默认分并压低置信度
			log.Printf("⚠️ 探查仓库 %s 健康度失败: %v", issue.RepoName, err)
			health = nil
		}
		healthByRepo[issue.RepoName] = health
	}
	for _, issue := range issues {
		if health := healthByRepo[issue.RepoName]; health != nil {
			issue.RepoStars = health.Stars
			issue.RepoDescription = health.Description
		}
	}

	// 6. 逐条 AI 鉴定
	fmt.Printf("🧠 开始鉴定 %d 条 issue...\n", len(issues))
	analyzed := f.analysis.AnalyzeBatch(ctx, issues, prefs, opts.OnProgress)
	if len(analyzed) == 0 {
		return nil, common.NewError(common.ErrCodeAIProcessing, "没有任何 issue 通过 AI 鉴定")
	}
	fmt.Printf("✅ %d 条通过鉴定\n", len(analyzed))

	// 7. 评分 + 排序
	scored := make([]*domain.ScoredIssue, 0, len(analyzed))
	for _, item := range analyzed {
		scored = append(scored, f.scorer.Score(item.Issue, item.Analysis, prefs, healthByRepo[item.Issue.RepoName]))
	}
	results := f.scorer.Rank(scored)

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	// 8. 记录浏览历史（展示给用户的才算看过）
	for _, item := range results {
		err := f.history.RecordView(item.Issue.ID, item.Issue.RepoName, item.Issue.Title,
			string(item.Analysis.Difficulty), item.Issue.URL)
		if err != nil {
			log.Printf("⚠️ 记录浏览历史失败: %v", err)
		}
	}

	fmt.Printf("🎉 本轮搜寻完成，共 %d 条结果\n", len(results))
	return results, nil
}
