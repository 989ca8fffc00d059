package service

import (
	"fmt"
	"math"
	"sort"

	"github-issue-scout/internal/common"
	"github-issue-scout/internal/config"
	"github-issue-scout/internal/domain"
)

// 评分引擎：把 AI 鉴定结果和用户画像揉成一个 [0,1] 的总分
//
// 四个维度及其默认权重：
//
//	difficulty 0.40  难度与用户技能的匹配程度
//	time       0.30  预估耗时与用户时间预算的匹配程度
//	health     0.15  仓库健康度（活跃、有贡献指南、star 达标）
//	clarity    0.15  issue 描述的清晰程度
//
// 评分是纯函数：不访问网络，不读缓存，相同输入永远产出相同输出

// 评分常量：距离越远分越低；拿不准就给中性分，不奖励也不惩罚
const (
	neutralScore = 0.5 // 枚举值未知时的中性分

	healthUnknownScore = 0.7 // 仓库健康度缺失时的默认分，略偏乐观
	healthHealthyScore = 0.5 // 整体健康（近半年活跃且 star 达标）
	healthGuideScore   = 0.3 // 有 CONTRIBUTING 指南
	healthFreshScore   = 0.2 // 近一个月内有更新

	weightSumTolerance = 1e-9
)

// Scorer 四维加权评分器，构造后不可变，可被多个 goroutine 共享
type Scorer struct {
	weights config.Weights
}

// NewScorer 构造评分器。权重之和偏离 1.0 属于配置错误，直接拒绝
func NewScorer(weights config.Weights) (*Scorer, error) {
	sum := weights.Difficulty + weights.Time + weights.Health + weights.Clarity
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, common.NewError(common.ErrCodeValidation,
			fmt.Sprintf("评分权重之和必须等于 1.0，实际是 %.6f", sum))
	}
	return &Scorer{weights: weights}, nil
}

// NewDefaultScorer 用默认权重构造，默认权重经过校验，不可能失败
func NewDefaultScorer() *Scorer {
	scorer, err := NewScorer(config.DefaultWeights())
	if err != nil {
		panic(err) // 默认权重写错属于编程错误
	}
	return scorer
}

// Score 对单条已分析的 issue 评分
// health 可以为 nil（健康度探查失败不阻断评分，给默认分并压低置信度）
func (s *Scorer) Score(issue *domain.Issue, analysis *domain.Analysis, prefs domain.Preferences, health *domain.RepoHealth) *domain.ScoredIssue {
	components := []domain.ScoreComponent{
		s.scoreDifficulty(analysis, prefs),
		s.scoreTime(analysis, prefs),
		s.scoreHealth(health),
		s.scoreClarity(analysis),
	}

	total := 0.0
	for i := range components {
		components[i].WeightedScore = components[i].Score * components[i].Weight
		components[i].MatchLabel = domain.MatchLabel(components[i].Score)
		total += components[i].WeightedScore
	}

	return &domain.ScoredIssue{
		Issue:             issue,
		Analysis:          analysis,
		Components:        components,
		Total:             total,
		OverallConfidence: rollupConfidence(components),
	}
}

// Rank 按总分从高到低排序。稳定排序：同分的 issue 保持输入顺序
// 不修改入参，返回新切片
func (s *Scorer) Rank(scored []*domain.ScoredIssue) []*domain.ScoredIssue {
	ranked := make([]*domain.ScoredIssue, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	return ranked
}

// scoreDifficulty 难度匹配：等级距离 0/1/≥2 映射到 1.0/0.6/0.2
// 任何一边是 unknown 都给中性分 0.5
func (s *Scorer) scoreDifficulty(analysis *domain.Analysis, prefs domain.Preferences) domain.ScoreComponent {
	component := domain.ScoreComponent{
		Name:       "difficulty",
		Weight:     s.weights.Difficulty,
		Confidence: analysis.DifficultyConfidence,
	}

	if !analysis.Difficulty.Known() || !prefs.Skill.Known() {
		component.Score = neutralScore
		component.Reasoning = "难度等级无法判定，给中性分"
		return component
	}

	distance := abs(analysis.Difficulty.Ordinal() - prefs.Skill.Ordinal())
	switch {
	case distance == 0:
		component.Score = 1.0
		component.Reasoning = fmt.Sprintf("难度 %s 与你的技能等级完全吻合", analysis.Difficulty)
	case distance == 1:
		component.Score = 0.6
		component.Reasoning = fmt.Sprintf("难度 %s 与你的技能等级相差一档", analysis.Difficulty)
	default:
		component.Score = 0.2
		component.Reasoning = fmt.Sprintf("难度 %s 与你的技能等级相差过大", analysis.Difficulty)
	}
	return component
}

// scoreTime 耗时匹配：档位距离 0/1/2/≥3 映射到 1.0/0.7/0.4/0.1
func (s *Scorer) scoreTime(analysis *domain.Analysis, prefs domain.Preferences) domain.ScoreComponent {
	component := domain.ScoreComponent{
		Name:       "time",
		Weight:     s.weights.Time,
		Confidence: analysis.TimeConfidence,
	}

	if !analysis.EstimatedTime.Known() || !prefs.Time.Known() {
		component.Score = neutralScore
		component.Reasoning = "预估耗时无法判定，给中性分"
		return component
	}

	distance := abs(analysis.EstimatedTime.Ordinal() - prefs.Time.Ordinal())
	switch {
	case distance == 0:
		component.Score = 1.0
		component.Reasoning = fmt.Sprintf("预估耗时（%s）正好在你的时间预算内", analysis.EstimatedTime.Label())
	case distance == 1:
		component.Score = 0.7
		component.Reasoning = fmt.Sprintf("预估耗时（%s）与你的时间预算相差一档", analysis.EstimatedTime.Label())
	case distance == 2:
		component.Score = 0.4
		component.Reasoning = fmt.Sprintf("预估耗时（%s）与你的时间预算相差两档", analysis.EstimatedTime.Label())
	default:
		component.Score = 0.1
		component.Reasoning = fmt.Sprintf("预估耗时（%s）远超你的时间预算", analysis.EstimatedTime.Label())
	}
	return component
}

// scoreHealth 仓库健康度：三个加分项累加后截断到 [0,1]
// 健康度数据缺失时给 0.7 默认分，但置信度压到 low，让总置信度如实反映数据缺口
func (s *Scorer) scoreHealth(health *domain.RepoHealth) domain.ScoreComponent {
	component := domain.ScoreComponent{
		Name:   "health",
		Weight: s.weights.Health,
	}

	if health == nil {
		component.Score = healthUnknownScore
		component.Confidence = domain.ConfidenceLow
		component.Reasoning = "仓库健康度数据缺失，按默认值估算"
		return component
	}

	score := 0.0
	if health.IsHealthy {
		score += healthHealthyScore
	}
	if health.HasContributingGuide {
		score += healthGuideScore
	}
	if health.DaysSinceUpdate < config.RepoFreshDays {
		score += healthFreshScore
	}

	component.Score = clamp(score, 0, 1)
	component.Confidence = domain.ConfidenceHigh
	component.Reasoning = fmt.Sprintf("整体健康/贡献指南/更新频度 三项检查得分 %.1f", component.Score)
	return component
}

// scoreClarity 清晰度：1-10 的 AI 评分线性折算到 [0,1]
// 折算本身是确定性算术，置信度恒为 high（AI 对清晰度的把握已体现在分值里）
func (s *Scorer) scoreClarity(analysis *domain.Analysis) domain.ScoreComponent {
	score := clamp(float64(analysis.ClarityScore), 0, 10) / 10.0
	return domain.ScoreComponent{
		Name:       "clarity",
		Weight:     s.weights.Clarity,
		Score:      score,
		Confidence: domain.ConfidenceHigh,
		Reasoning:  fmt.Sprintf("issue 描述清晰度 %d/10", analysis.ClarityScore),
	}
}

// rollupConfidence 总置信度取保守策略：
// 有任何一个维度是 low 就是 low；全是 high 才是 high；其余 medium
// 宁可低估也不高估，避免给用户虚假的确定感
func rollupConfidence(components []domain.ScoreComponent) domain.Confidence {
	allHigh := true
	for _, c := range components {
		if c.Confidence == domain.ConfidenceLow {
			return domain.ConfidenceLow
		}
		if c.Confidence != domain.ConfidenceHigh {
			allHigh = false
		}
	}
	if allHigh {
		return domain.ConfidenceHigh
	}
	return domain.ConfidenceMedium
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
