package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github-issue-scout/internal/adapter/cache"
	"github-issue-scout/internal/domain"
)

// 终端展示层：把评分结果渲染成带颜色的卡片
// 只负责好看，不做任何业务判断

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			MarginBottom(1)

	titleStyle = lipgloss.NewStyle().Bold(true)

	repoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	urlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Underline(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	// 匹配度配色：绿 / 黄 / 红
	scoreHighStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	scoreMidStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	scoreLowStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// Presenter 渲染器，所有 Render 方法只产出字符串，由调用方决定打到哪
type Presenter struct{}

// NewPresenter 创建渲染器
func NewPresenter() *Presenter {
	return &Presenter{}
}

// RenderHeader 一次搜索的标题行
func (p *Presenter) RenderHeader(prefs domain.Preferences, total int) string {
	parts := []string{fmt.Sprintf("🔍 为你找到 %d 条 issue", total)}
	if prefs.Topic != "" {
		parts = append(parts, "主题 "+prefs.Topic)
	}
	if prefs.Language != "" {
		parts = append(parts, "语言 "+prefs.Language)
	}
	parts = append(parts, fmt.Sprintf("技能 %s", prefs.Skill), fmt.Sprintf("预算 %s", prefs.Time.Label()))
	return headerStyle.Render(strings.Join(parts, "  ·  "))
}

// RenderIssue 单条结果的卡片
func (p *Presenter) RenderIssue(rank int, scored *domain.ScoredIssue) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n",
		titleStyle.Render(fmt.Sprintf("#%d %s", rank, scored.Issue.Title)),
		scoreStyle(scored.Total).Render(fmt.Sprintf("%.0f%%", scored.Total*100)))
	fmt.Fprintf(&sb, "%s  %s\n",
		repoStyle.Render(scored.Issue.RepoName),
		dimStyle.Render(fmt.Sprintf("置信度 %s", scored.OverallConfidence)))

	if scored.Analysis != nil {
		fmt.Fprintf(&sb, "📝 %s\n", scored.Analysis.Summary)
		fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf("难度 %s · 耗时 %s · 清晰度 %d/10",
			scored.Analysis.Difficulty, scored.Analysis.EstimatedTime.Label(), scored.Analysis.ClarityScore)))
		if scored.Analysis.Recommendation != "" {
			fmt.Fprintf(&sb, "💡 %s\n", scored.Analysis.Recommendation)
		}
	}

	for _, c := range scored.Components {
		fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf("  %-10s %.2f × %.2f = %.3f  (%s)",
			c.Name, c.Score, c.Weight, c.WeightedScore, c.MatchLabel)))
	}

	sb.WriteString(urlStyle.Render(scored.Issue.URL))

	return cardStyle.Render(sb.String())
}

// RenderProgress 批量分析的进度行
func (p *Presenter) RenderProgress(current, total int, title string) string {
	return dimStyle.Render(fmt.Sprintf("🧠 [%d/%d] 正在鉴定: %s", current, total, truncate(title, 60)))
}

// RenderCacheStats 缓存统计摘要
func (p *Presenter) RenderCacheStats(stats cache.CombinedStats) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("💾 缓存统计"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "搜索缓存:  命中 %d / 未命中 %d (命中率 %.0f%%)\n",
		stats.Search.Hits, stats.Search.Misses, stats.Search.HitRate*100)
	fmt.Fprintf(&sb, "分析缓存:  命中 %d / 未命中 %d (命中率 %.0f%%)\n",
		stats.Analysis.Hits, stats.Analysis.Misses, stats.Analysis.HitRate*100)
	fmt.Fprintf(&sb, "磁盘占用:  %s", humanBytes(stats.SizeBytes))
	return sb.String()
}

func scoreStyle(total float64) lipgloss.Style {
	switch {
	case total >= 0.8:
		return scoreHighStyle
	case total >= 0.6:
		return scoreMidStyle
	default:
		return scoreLowStyle
	}
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
