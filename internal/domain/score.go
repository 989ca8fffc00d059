package domain

// ScoreComponent 单个评分维度的值对象
// 四个维度固定顺序：difficulty, time, health, clarity
type ScoreComponent struct {
	Name          string     `json:"name"`
	Score         float64    `json:"score"`          // 原始分 [0,1]
	Weight        float64    `json:"weight"`         // 权重 [0,1]，四项之和必须等于 1.0
	WeightedScore float64    `json:"weighted_score"` // Score * Weight
	Confidence    Confidence `json:"confidence"`
	Reasoning     string     `json:"reasoning"`
	MatchLabel    string     `json:"match_label"` // 纯描述性标签，不参与后续计算
}

// MatchLabel 根据原始分生成定性匹配标签
func MatchLabel(score float64) string {
	switch {
	case score >= 0.9:
		return "Excellent match"
	case score >= 0.7:
		return "Good match"
	case score >= 0.5:
		return "Partial match"
	case score >= 0.3:
		return "Weak match"
	default:
		return "Poor match"
	}
}

// ScoredIssue 评分完成的 issue：总分 = 四个维度加权分之和，落在 [0,1]
// 由 Scorer 创建一次，之后不可变，供排序、展示和导出消费
type ScoredIssue struct {
	Issue             *Issue           `json:"issue"`
	Analysis          *Analysis        `json:"analysis"`
	Components        []ScoreComponent `json:"components"`
	Total             float64          `json:"total"`
	OverallConfidence Confidence       `json:"overall_confidence"`
}
