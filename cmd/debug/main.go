package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github-issue-scout/internal/adapter/filter"
	"github-issue-scout/internal/adapter/gemini"
	"github-issue-scout/internal/adapter/github"
	"github-issue-scout/internal/config"
	"github-issue-scout/internal/domain"
	"github-issue-scout/internal/service"
)

// 调试入口：绕开缓存和持久化，直接跑一遍 搜索 → 初筛 → 鉴定 → 评分
// 用来肉眼检查 GitHub 查询和 AI prompt 的效果

func main() {
	config.LoadEnv()

	githubToken := os.Getenv("GITHUB_TOKEN")
	geminiKey, err := config.GeminiKey()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx := context.Background()

	scouter := github.NewScouter(githubToken)
	issueFilter := filter.NewIssueFilter()
	appraiser, err := gemini.NewGeminiAppraiser(ctx, geminiKey)
	if err != nil {
		log.Fatalf("❌ AI 初始化失败: %v", err)
	}
	defer appraiser.Close()
	scorer := service.NewDefaultScorer()

	prefs := domain.Preferences{
		Topic:    "cli",
		Language: "go",
		Skill:    domain.Beginner,
		Time:     domain.HalfDay,
	}

	fmt.Println("🔍 调试模式：搜索并鉴定 issue")

	// 1. 搜索
	fmt.Println("📥 正在搜索 GitHub issue...")
	issues, err := scouter.Search(ctx, prefs, 10)
	if err != nil {
		log.Printf("❌ 搜索失败: %v", err)
		return
	}
	fmt.Printf("✅ 搜索到 %d 条 issue\n", len(issues))

	if len(issues) == 0 {
		fmt.Println("❌ 没有搜到任何 issue")
		return
	}

	// 2. 初筛
	fmt.Println("🔍 开始初筛...")
	issues = issueFilter.FilterByAge(issues, config.MaxIssueAgeDays)
	issues = issueFilter.FilterUnassigned(issues)
	fmt.Printf("✅ 初筛后剩余 %d 条\n", len(issues))

	if len(issues) == 0 {
		fmt.Println("❌ 初筛后没有剩余 issue")
		return
	}

	// 3. 鉴定 + 评分 (只跑前3条，省 API 配额)
	limit := min(3, len(issues))
	fmt.Printf("🧠 对前%d条 issue 进行鉴定:\n", limit)
	for i, issue := range issues[:limit] {
		fmt.Printf("  鉴定 #%d: %s (%s)\n", i+1, issue.Title, issue.Key())

		// 先探查健康度，把搜索接口缺的 star 数和简介补进快照再送去鉴定
		health, err := scouter.CheckRepoHealth(ctx, issue.RepoName)
		if err != nil {
			log.Printf("    ⚠️ 健康度探查失败: %v", err)
			health = nil
		}
		if health != nil {
			issue.RepoStars = health.Stars
			issue.RepoDescription = health.Description
		}

		analysis, err := appraiser.Appraise(ctx, issue, prefs, domain.DifficultyUnknown)
		if err != nil {
			log.Printf("    ⚠️ 鉴定失败: %v", err)
			continue
		}
		if err := analysis.Validate(); err != nil {
			log.Printf("    ⚠️ 鉴定结果不合法: %v", err)
			continue
		}

		scored := scorer.Score(issue, analysis, prefs, health)
		fmt.Printf("    难度: %s (%s)\n", analysis.Difficulty, analysis.DifficultyConfidence)
		fmt.Printf("    耗时: %s (%s)\n", analysis.EstimatedTime.Label(), analysis.TimeConfidence)
		fmt.Printf("    清晰度: %d/10\n", analysis.ClarityScore)
		fmt.Printf("    总分: %.3f (置信度 %s)\n", scored.Total, scored.OverallConfidence)
		fmt.Printf("    建议: %s\n", analysis.Recommendation)
		fmt.Println()
	}
}
