package domain

import "strings"

// 难度、耗时、置信度这三组字符串在系统边界上统一收敛成封闭枚举
// 只保留一条明确的 unknown 兜底路径，评分逻辑里不再流转裸字符串

// Difficulty 贡献者技能要求等级
type Difficulty string

const (
	Beginner          Difficulty = "beginner"
	Intermediate      Difficulty = "intermediate"
	Advanced          Difficulty = "advanced"
	DifficultyUnknown Difficulty = "unknown"
)

// difficultyOrder 有序列表，用于计算等级之间的"距离"
var difficultyOrder = []Difficulty{Beginner, Intermediate, Advanced}

// ParseDifficulty 把自由文本收敛成枚举，识别不了的一律归 unknown
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Beginner:
		return Beginner
	case Intermediate:
		return Intermediate
	case Advanced:
		return Advanced
	default:
		return DifficultyUnknown
	}
}

// Ordinal 返回等级序号 (0,1,2)，unknown 返回 -1
func (d Difficulty) Ordinal() int {
	for i, v := range difficultyOrder {
		if v == d {
			return i
		}
	}
	return -1
}

// Known 是否为合法枚举值
func (d Difficulty) Known() bool {
	return d.Ordinal() >= 0
}

// TimeBudget 预估耗时档位，从小到大排序
type TimeBudget string

const (
	QuickWin    TimeBudget = "quick_win"
	HalfDay     TimeBudget = "half_day"
	FullDay     TimeBudget = "full_day"
	Weekend     TimeBudget = "weekend"
	DeepDive    TimeBudget = "deep_dive"
	TimeUnknown TimeBudget = "unknown"
)

var timeOrder = []TimeBudget{QuickWin, HalfDay, FullDay, Weekend, DeepDive}

// ParseTimeBudget 把自由文本收敛成枚举
func ParseTimeBudget(s string) TimeBudget {
	switch TimeBudget(strings.ToLower(strings.TrimSpace(s))) {
	case QuickWin:
		return QuickWin
	case HalfDay:
		return HalfDay
	case FullDay:
		return FullDay
	case Weekend:
		return Weekend
	case DeepDive:
		return DeepDive
	default:
		return TimeUnknown
	}
}

// Ordinal 返回档位序号 (0..4)，unknown 返回 -1
func (t TimeBudget) Ordinal() int {
	for i, v := range timeOrder {
		if v == t {
			return i
		}
	}
	return -1
}

// Known 是否为合法枚举值
func (t TimeBudget) Known() bool {
	return t.Ordinal() >= 0
}

// Label 人类可读的耗时描述
func (t TimeBudget) Label() string {
	switch t {
	case QuickWin:
		return "2小时以内"
	case HalfDay:
		return "2-4小时"
	case FullDay:
		return "4-8小时"
	case Weekend:
		return "1-3天"
	case DeepDive:
		return "一周以上"
	default:
		return string(t)
	}
}

// Confidence AI 自报的可靠程度标签，不是统计学意义上的概率
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence 缺失或识别不了时默认 medium
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceLow:
		return ConfidenceLow
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceMedium
	}
}
