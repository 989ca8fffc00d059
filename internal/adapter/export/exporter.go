package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github-issue-scout/internal/common"
	"github-issue-scout/internal/domain"
)

// 把一次搜索的评分结果导出成文件，方便存档或贴给别人看
// 格式由扩展名决定：.json 给程序消费，.md 给人看

// Exporter 结果导出器
type Exporter struct {
	nowFunc func() time.Time
}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{nowFunc: time.Now}
}

// Export 按扩展名选格式写文件
func (e *Exporter) Export(path string, prefs domain.Preferences, results []*domain.ScoredIssue) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return e.exportJSON(path, prefs, results)
	case ".md", ".markdown":
		return e.exportMarkdown(path, prefs, results)
	default:
		return common.NewError(common.ErrCodeInvalidInput,
			fmt.Sprintf("不认识的导出格式 %q (支持 .json / .md)", filepath.Ext(path)))
	}
}

// exportDocument JSON 导出的顶层结构
type exportDocument struct {
	ExportedAt  time.Time             `json:"exported_at"`
	Preferences domain.Preferences    `json:"preferences"`
	Results     []*domain.ScoredIssue `json:"results"`
}

func (e *Exporter) exportJSON(path string, prefs domain.Preferences, results []*domain.ScoredIssue) error {
	doc := exportDocument{
		ExportedAt:  e.nowFunc(),
		Preferences: prefs,
		Results:     results,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return common.WrapError(common.ErrCodeInternal, "序列化导出结果失败", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return common.WrapError(common.ErrCodeStorage, fmt.Sprintf("写入导出文件失败: %s", path), err)
	}
	return nil
}

func (e *Exporter) exportMarkdown(path string, prefs domain.Preferences, results []*domain.ScoredIssue) error {
	var sb strings.Builder

	sb.WriteString("# GitHub Issue 搜寻结果\n\n")
	fmt.Fprintf(&sb, "- 导出时间: %s\n", e.nowFunc().Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "- 画像: 技能 %s / 时间预算 %s", prefs.Skill, prefs.Time.Label())
	if prefs.Topic != "" {
		fmt.Fprintf(&sb, " / 主题 %s", prefs.Topic)
	}
	if prefs.Language != "" {
		fmt.Fprintf(&sb, " / 语言 %s", prefs.Language)
	}
	fmt.Fprintf(&sb, "\n- 共 %d 条\n\n", len(results))

	for i, scored := range results {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, scored.Issue.Title)
		fmt.Fprintf(&sb, "**仓库:** %s  |  **匹配度:** %.0f%%  |  **置信度:** %s\n\n",
			scored.Issue.RepoName, scored.Total*100, scored.OverallConfidence)
		fmt.Fprintf(&sb, "🔗 %s\n\n", scored.Issue.URL)

		if scored.Analysis != nil {
			fmt.Fprintf(&sb, "**📝 一句话概括:** %s\n\n", scored.Analysis.Summary)
			fmt.Fprintf(&sb, "**难度:** %s  |  **预估耗时:** %s  |  **清晰度:** %d/10\n\n",
				scored.Analysis.Difficulty, scored.Analysis.EstimatedTime.Label(), scored.Analysis.ClarityScore)
			if len(scored.Analysis.TechnicalRequirements) > 0 {
				fmt.Fprintf(&sb, "**技术点:** %s\n\n", strings.Join(scored.Analysis.TechnicalRequirements, ", "))
			}
			fmt.Fprintf(&sb, "**🤖 建议:** %s\n\n", scored.Analysis.Recommendation)
		}

		sb.WriteString("| 维度 | 原始分 | 权重 | 加权分 | 匹配 |\n")
		sb.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, c := range scored.Components {
			fmt.Fprintf(&sb, "| %s | %.2f | %.2f | %.3f | %s |\n",
				c.Name, c.Score, c.Weight, c.WeightedScore, c.MatchLabel)
		}
		sb.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return common.WrapError(common.ErrCodeStorage, fmt.Sprintf("写入导出文件失败: %s", path), err)
	}
	return nil
}
