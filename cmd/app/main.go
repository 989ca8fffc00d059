package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github-issue-scout/internal/adapter/cache"
	"github-issue-scout/internal/adapter/export"
	"github-issue-scout/internal/adapter/filter"
	"github-issue-scout/internal/adapter/gemini"
	"github-issue-scout/internal/adapter/github"
	"github-issue-scout/internal/adapter/repository"
	"github-issue-scout/internal/adapter/terminal"
	"github-issue-scout/internal/config"
	"github-issue-scout/internal/domain"
	"github-issue-scout/internal/service"
)

func main() {
	config.LoadEnv()

	root := &cobra.Command{
		Use:   "issue-scout",
		Short: "按你的技能和时间找适合上手的开源 issue",
		Long: `issue-scout 搜索 GitHub 上的开放 issue，用 AI 鉴定每条的难度、
耗时和清晰度，再按你的技能等级和时间预算打分排序。`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newFindCmd(),
		newCacheCmd(),
		newFavoritesCmd(),
		newHistoryCmd(),
		newLabelsCmd(),
		newCheckSetupCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --- find ---

func newFindCmd() *cobra.Command {
	var (
		topic    string
		language string
		skill    string
		budget   string
		limit    int
		showSeen bool
		exportTo string
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "搜寻并评分匹配你的 issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := buildPreferences(topic, language, skill, budget)
			if err != nil {
				return err
			}

			// 整个搜寻周期的超时上限，Ctrl+C 也能随时打断
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			deps, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.close()

			presenter := terminal.NewPresenter()
			opts := service.FindOptions{
				HideSeen: !showSeen,
				Limit:    limit,
				OnProgress: func(current, total int, title string) {
					fmt.Println(presenter.RenderProgress(current, total, title))
				},
			}

			results, err := deps.finder.FindIssues(ctx, prefs, opts)
			if err != nil {
				return err
			}

			fmt.Println(presenter.RenderHeader(prefs, len(results)))
			for i, scored := range results {
				fmt.Println(presenter.RenderIssue(i+1, scored))
			}
			fmt.Println(presenter.RenderCacheStats(deps.cacheMgr.Stats()))

			// 存一份会话快照，favorites add 用编号引用
			if err := deps.session.Save(prefs, results); err != nil {
				log.Printf("⚠️ 保存会话快照失败: %v", err)
			}

			if exportTo != "" {
				if err := export.NewExporter().Export(exportTo, prefs, results); err != nil {
					return err
				}
				fmt.Printf("📄 结果已导出到 %s\n", exportTo)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "主题 (ai/web/backend/devops/... 或任意关键词)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "编程语言")
	cmd.Flags().StringVarP(&skill, "skill", "s", "", "技能等级: beginner/intermediate/advanced (必填)")
	cmd.Flags().StringVarP(&budget, "time", "t", "", "时间预算: quick_win/half_day/full_day/weekend/deep_dive (必填)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "最多展示几条")
	cmd.Flags().BoolVar(&showSeen, "show-seen", false, "不过滤看过的 issue")
	cmd.Flags().StringVar(&exportTo, "export", "", "把结果导出到文件 (.json 或 .md)")
	_ = cmd.MarkFlagRequired("skill")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}

// --- cache ---

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "查看或清理缓存",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := cache.NewManager(config.CacheDir())
			if err != nil {
				return err
			}
			fmt.Println(terminal.NewPresenter().RenderCacheStats(manager.Stats()))
			return nil
		},
	}

	var clearSearch, clearAnalysis bool
	clear := &cobra.Command{
		Use:   "clear",
		Short: "清空缓存 (默认全清，可用 --search / --analysis 只清一边)",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := cache.NewManager(config.CacheDir())
			if err != nil {
				return err
			}
			switch {
			case clearSearch && !clearAnalysis:
				err = manager.ClearSearch()
			case clearAnalysis && !clearSearch:
				err = manager.ClearAnalysis()
			default:
				err = manager.ClearAll()
			}
			if err != nil {
				return err
			}
			fmt.Println("✅ 缓存已清空")
			return nil
		},
	}
	clear.Flags().BoolVar(&clearSearch, "search", false, "只清搜索缓存")
	clear.Flags().BoolVar(&clearAnalysis, "analysis", false, "只清分析缓存")
	cmd.AddCommand(clear)

	return cmd
}

// --- favorites ---

func newFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "管理收藏夹",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.NewFavoritesStore(config.DataDir())
			if err != nil {
				return err
			}
			list := store.List()
			if len(list) == 0 {
				fmt.Println("📭 收藏夹是空的，find 之后用 favorites add <编号> 收藏")
				return nil
			}
			for _, entry := range list {
				fmt.Printf("⭐ %s  %s (匹配度 %.0f%%)\n", entry.Issue.Key(), entry.Issue.Title, entry.TotalScore*100)
				fmt.Printf("   %s\n", entry.Issue.URL)
				if entry.Notes != "" {
					fmt.Printf("   📝 %s\n", entry.Notes)
				}
			}
			return nil
		},
	}

	var notes string
	add := &cobra.Command{
		Use:   "add <编号>",
		Short: "收藏最近一次 find 结果里的第 N 条",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rank, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("编号必须是数字: %q", args[0])
			}
			scored, err := repository.NewSessionStore(config.DataDir()).Get(rank)
			if err != nil {
				return err
			}
			store, err := repository.NewFavoritesStore(config.DataDir())
			if err != nil {
				return err
			}
			if err := store.Add(scored, notes); err != nil {
				return err
			}
			fmt.Printf("⭐ 已收藏 %s\n", scored.Issue.Key())
			return nil
		},
	}
	add.Flags().StringVar(&notes, "notes", "", "附加笔记")

	remove := &cobra.Command{
		Use:   "remove <repo#id>",
		Short: "取消收藏",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.NewFavoritesStore(config.DataDir())
			if err != nil {
				return err
			}
			if err := store.Remove(args[0]); err != nil {
				return err
			}
			fmt.Printf("🗑️ 已取消收藏 %s\n", args[0])
			return nil
		},
	}

	note := &cobra.Command{
		Use:   "notes <repo#id> <笔记>",
		Short: "改收藏的笔记",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.NewFavoritesStore(config.DataDir())
			if err != nil {
				return err
			}
			if err := store.UpdateNotes(args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Println("📝 笔记已更新")
			return nil
		},
	}

	cmd.AddCommand(add, remove, note)
	return cmd
}

// --- history ---

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "查看浏览历史",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.NewHistoryStore(config.DataDir())
			if err != nil {
				return err
			}
			list := store.List()
			if len(list) == 0 {
				fmt.Println("📭 还没有浏览历史")
				return nil
			}
			for _, entry := range list {
				fmt.Printf("[%s] %s  %s (看过 %d 次, 最近 %s)\n",
					entry.Status, domain.IssueKey(entry.RepoName, entry.IssueID),
					entry.Title, entry.ViewCount, entry.LastViewedAt.Format("2006-01-02"))
			}
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status <repo#id> <状态>",
		Short: "标注状态: viewed/interested/attempted/completed/abandoned/skipped",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := repository.ParseIssueStatus(args[1])
			if err != nil {
				return err
			}
			store, err := repository.NewHistoryStore(config.DataDir())
			if err != nil {
				return err
			}
			if err := store.SetStatus(args[0], parsed); err != nil {
				return err
			}
			fmt.Printf("✅ %s 已标注为 %s\n", args[0], parsed)
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "各状态的统计",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.NewHistoryStore(config.DataDir())
			if err != nil {
				return err
			}
			counts := store.StatusCounts()
			fmt.Printf("共 %d 条历史\n", store.Len())
			for status, count := range counts {
				fmt.Printf("  %-12s %d\n", status, count)
			}
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "清空浏览历史",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.NewHistoryStore(config.DataDir())
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("✅ 浏览历史已清空")
			return nil
		},
	}

	cmd.AddCommand(status, stats, clear)
	return cmd
}

// --- labels ---

func newLabelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "管理标签到难度的映射",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.NewLabelStore(config.DataDir())
			if err != nil {
				return err
			}
			custom := store.ListCustom()
			if len(custom) == 0 {
				fmt.Println("📭 没有自定义映射 (内置的知名仓库映射始终生效)")
				return nil
			}
			for repoName, mapping := range custom {
				fmt.Printf("%s:\n", repoName)
				for label, difficulty := range mapping {
					fmt.Printf("  %-24s -> %s\n", label, difficulty)
				}
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <repo> <标签> <难度>",
		Short: "自定义一条映射，如: labels set owner/repo E-medium advanced",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.NewLabelStore(config.DataDir())
			if err != nil {
				return err
			}
			if err := store.SetCustom(args[0], args[1], domain.ParseDifficulty(args[2])); err != nil {
				return err
			}
			fmt.Printf("✅ %s 的 %q 现在映射为 %s\n", args[0], args[1], args[2])
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <repo>",
		Short: "删掉一个仓库的全部自定义映射",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.NewLabelStore(config.DataDir())
			if err != nil {
				return err
			}
			if err := store.RemoveCustom(args[0]); err != nil {
				return err
			}
			fmt.Printf("🗑️ 已删除 %s 的自定义映射\n", args[0])
			return nil
		},
	}

	imp := &cobra.Command{
		Use:   "import <文件>",
		Short: "从 JSON 文件批量导入映射",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mappings, err := loadLabelMappings(args[0])
			if err != nil {
				return err
			}
			store, err := repository.NewLabelStore(config.DataDir())
			if err != nil {
				return err
			}
			if err := store.Import(mappings); err != nil {
				return err
			}
			fmt.Printf("✅ 已导入 %d 个仓库的映射\n", len(mappings))
			return nil
		},
	}

	cmd.AddCommand(set, remove, imp)
	return cmd
}

// --- check-setup ---

func newCheckSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-setup",
		Short: "检查运行环境是否就绪",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := true

			if config.GitHubToken() == "" {
				fmt.Println("⚠️ GITHUB_TOKEN 未设置 (匿名访问限制 60次/小时，建议配置)")
			} else {
				fmt.Println("✅ GITHUB_TOKEN 已设置")
			}

			if _, err := config.GeminiKey(); err != nil {
				fmt.Println("❌ GEMINI_API_KEY 未设置 (AI 鉴定没它不行)")
				ok = false
			} else {
				fmt.Println("✅ GEMINI_API_KEY 已设置")
			}

			if _, err := cache.NewManager(config.CacheDir()); err != nil {
				fmt.Printf("❌ 缓存目录不可用: %v\n", err)
				ok = false
			} else {
				fmt.Printf("✅ 缓存目录: %s\n", config.CacheDir())
			}

			if err := os.MkdirAll(config.DataDir(), 0o700); err != nil {
				fmt.Printf("❌ 数据目录不可用: %v\n", err)
				ok = false
			} else {
				fmt.Printf("✅ 数据目录: %s\n", config.DataDir())
			}

			if !ok {
				return fmt.Errorf("环境还没就绪")
			}
			fmt.Println("🎉 一切就绪")
			return nil
		},
	}
}

// --- 组装 ---

// appDeps find 命令的全套依赖
type appDeps struct {
	finder    *service.FinderService
	cacheMgr  *cache.Manager
	session   *repository.SessionStore
	appraiser *gemini.GeminiAppraiser
}

func (d *appDeps) close() {
	if d.appraiser != nil {
		_ = d.appraiser.Close()
	}
}

// buildDeps 按依赖顺序组装所有组件
func buildDeps(ctx context.Context) (*appDeps, error) {
	geminiKey, err := config.GeminiKey()
	if err != nil {
		return nil, err
	}

	cacheMgr, err := cache.NewManager(config.CacheDir())
	if err != nil {
		return nil, err
	}
	history, err := repository.NewHistoryStore(config.DataDir())
	if err != nil {
		return nil, err
	}
	labels, err := repository.NewLabelStore(config.DataDir())
	if err != nil {
		return nil, err
	}

	appraiser, err := gemini.NewGeminiAppraiser(ctx, geminiKey)
	if err != nil {
		return nil, fmt.Errorf("AI 初始化失败: %w", err)
	}

	scouter := github.NewScouter(config.GitHubToken())
	analysis := service.NewAnalysisService(appraiser, cacheMgr.Analysis(), labels)
	finder := service.NewFinderService(scouter, filter.NewIssueFilter(), analysis, service.NewDefaultScorer(), cacheMgr, history)

	return &appDeps{
		finder:    finder,
		cacheMgr:  cacheMgr,
		session:   repository.NewSessionStore(config.DataDir()),
		appraiser: appraiser,
	}, nil
}

// loadLabelMappings 读取批量导入文件
// 格式: {"owner/repo": {"标签": "难度", ...}, ...}
func loadLabelMappings(path string) (map[string]map[string]domain.Difficulty, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取映射文件失败: %w", err)
	}

	var raw map[string]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("映射文件格式不对: %w", err)
	}

	mappings := make(map[string]map[string]domain.Difficulty, len(raw))
	for repoName, labelMap := range raw {
		mappings[repoName] = make(map[string]domain.Difficulty, len(labelMap))
		for label, difficulty := range labelMap {
			parsed := domain.ParseDifficulty(difficulty)
			if !parsed.Known() {
				return nil, fmt.Errorf("%s 的 %q 映射了非法难度 %q", repoName, label, difficulty)
			}
			mappings[repoName][label] = parsed
		}
	}
	return mappings, nil
}

// buildPreferences 把命令行参数收敛成画像，非法枚举值直接报错
func buildPreferences(topic, language, skill, budget string) (domain.Preferences, error) {
	parsedSkill := domain.ParseDifficulty(skill)
	if !parsedSkill.Known() {
		return domain.Preferences{}, fmt.Errorf("非法技能等级 %q (可选: beginner/intermediate/advanced)", skill)
	}
	parsedTime := domain.ParseTimeBudget(budget)
	if !parsedTime.Known() {
		return domain.Preferences{}, fmt.Errorf("非法时间预算 %q (可选: quick_win/half_day/full_day/weekend/deep_dive)", budget)
	}
	return domain.Preferences{
		Topic:    strings.TrimSpace(topic),
		Language: strings.TrimSpace(language),
		Skill:    parsedSkill,
		Time:     parsedTime,
	}, nil
}
