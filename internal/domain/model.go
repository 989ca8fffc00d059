package domain

import (
	"fmt"
	"time"
)

// Issue 代表一条从 GitHub 搜索到的 issue 快照
// 搜索时创建；搜索接口不带仓库详情，star 数和简介由健康度探查补全，此后只读
type Issue struct {
	// 身份标识：仓库全名 + issue 编号
	ID       int    `json:"id"`
	RepoName string `json:"repo_name"` // 例如 "facebook/react"

	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`

	// 仓库维度信息（用于健康度评估和展示）
	RepoStars       int    `json:"repo_stars"`
	RepoDescription string `json:"repo_description"`

	Labels        []string  `json:"labels"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"` // 缓存 key 的失效依据
	CommentsCount int       `json:"comments_count"`
	Assignees     []string  `json:"assignees"`
}

// Key 返回 issue 的唯一标识 "repo#id"，收藏夹和历史记录都用它做主键
func (i *Issue) Key() string {
	return IssueKey(i.RepoName, i.ID)
}

// IssueKey 生成 issue 的唯一标识
func IssueKey(repoName string, issueID int) string {
	return fmt.Sprintf("%s#%d", repoName, issueID)
}

// Preferences 用户画像：一次运行期间不可变
type Preferences struct {
	Topic    string     `json:"topic"`
	Language string     `json:"language"`
	Skill    Difficulty `json:"skill"`
	Time     TimeBudget `json:"time"`
}

// RepoHealth 仓库健康度指标
type RepoHealth struct {
	Stars                int    `json:"stars"`
	Forks                int    `json:"forks"`
	OpenIssues           int    `json:"open_issues"`
	Description          string `json:"description,omitempty"`
	DaysSinceUpdate      int    `json:"days_since_update"`
	HasContributingGuide bool   `json:"has_contributing_guide"`
	IsHealthy            bool   `json:"is_healthy"` // 近180天有更新 且 star 数达标
}

// Analysis AI 鉴定结果：难度、耗时、清晰度三个维度各带置信度和一句话理由
// 按值缓存（纯 JSON），缓存命中时直接反序列化重建，不再调用 AI
type Analysis struct {
	Difficulty           Difficulty `json:"difficulty"`
	DifficultyConfidence Confidence `json:"difficulty_confidence"`
	DifficultyReasoning  string     `json:"difficulty_reasoning"`

	EstimatedTime  TimeBudget `json:"estimated_time"`
	TimeConfidence Confidence `json:"time_confidence"`
	TimeReasoning  string     `json:"time_reasoning"`

	Summary               string   `json:"summary"`
	TechnicalRequirements []string `json:"technical_requirements"`

	ClarityScore      int        `json:"clarity_score"` // 1-10
	ClarityConfidence Confidence `json:"clarity_confidence"`
	ClarityReasoning  string     `json:"clarity_reasoning"`

	Recommendation string `json:"recommendation"`
}

// Validate 校验 AI 返回的结构化结果是否完整合法
// 缺字段或枚举值越界都算校验失败，调用方把该条 issue 丢弃即可（可恢复错误）
func (a *Analysis) Validate() error {
	if a == nil {
		return fmt.Errorf("分析结果为空")
	}
	if a.Summary == "" {
		return fmt.Errorf("缺少 summary 字段")
	}
	if a.Recommendation == "" {
		return fmt.Errorf("缺少 recommendation 字段")
	}
	if !a.Difficulty.Known() {
		return fmt.Errorf("难度取值越界: %q", string(a.Difficulty))
	}
	if !a.EstimatedTime.Known() {
		return fmt.Errorf("耗时取值越界: %q", string(a.EstimatedTime))
	}
	if a.ClarityScore < 1 || a.ClarityScore > 10 {
		return fmt.Errorf("清晰度评分越界: %d (要求 1-10)", a.ClarityScore)
	}
	return nil
}

// AnalyzedIssue issue 与其鉴定结果的配对，批量分析的输出单元
type AnalyzedIssue struct {
	Issue    *Issue    `json:"issue"`
	Analysis *Analysis `json:"analysis"`
}
