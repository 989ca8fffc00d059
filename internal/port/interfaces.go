package port

import (
	"context"
	"time"

	"github-issue-scout/internal/domain"
)

// Scouter (侦察兵): 负责去 GitHub 搜索候选 issue 并探查仓库健康度
type Scouter interface {
	// 按用户画像搜索开放 issue，最近更新的排在前面，可能不足 max 条
	Search(ctx context.Context, prefs domain.Preferences, max int) ([]*domain.Issue, error)

	// 探查仓库健康度（活跃度、贡献指南、star 数）
	CheckRepoHealth(ctx context.Context, repoName string) (*domain.RepoHealth, error)
}

// Appraiser (鉴定师): 负责调用 LLM (Gemini) 鉴定单条 issue
// hint 是标签映射给出的难度提示，仅作参考上下文，不是硬性覆盖
type Appraiser interface {
	Appraise(ctx context.Context, issue *domain.Issue, prefs domain.Preferences, hint domain.Difficulty) (*domain.Analysis, error)
}

// AnalysisCache 分析结果缓存的能力接口
// 注入给编排层（依赖注入），测试时换成内存实现即可，不用动 Analyzer 逻辑
type AnalysisCache interface {
	// Get 命中返回序列化的分析结果；过期视同未命中并踢掉旧条目
	Get(key string) ([]byte, bool)

	// Set 覆盖写入，过期时间从调用时刻起算
	Set(key string, value []byte, ttl time.Duration) error
}

// Filter (初筛漏斗): 在 AI 鉴定之前过掉明显不合格的 issue
// 搜索查询已经带了这些条件，但缓存结果可能过时，展示前本地再过一遍
type Filter interface {
	FilterByAge(issues []*domain.Issue, maxDaysOld int) []*domain.Issue
	FilterUnassigned(issues []*domain.Issue) []*domain.Issue
}

// LabelMapper (标签翻译官): 把仓库的标签翻译成难度等级
// 三级回退：用户自定义映射 → 内置知名仓库映射 → 全局默认标签
type LabelMapper interface {
	// DifficultyHint 从标签推断难度，推断不出来时第二个返回值为 false
	DifficultyHint(repoName string, labels []string) (domain.Difficulty, bool)

	HasCustom(repoName string) bool
	HasBuiltin(repoName string) bool
}

// Viewlog (浏览史官): 记录用户看过哪些 issue，用于去重过滤
type Viewlog interface {
	IsSeen(repoName string, issueID int) bool

	// RecordView 记录一次浏览，重复浏览会累加次数并刷新时间
	RecordView(issueID int, repoName, title, difficulty, url string) error
}
