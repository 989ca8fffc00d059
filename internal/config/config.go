package config

import (
	"os"
	"path/filepath"
	"time"

	"github-issue-scout/internal/common"

	"github.com/joho/godotenv"
)

// 所有可调参数集中在这里，控制搜索、分析和评分的行为

// GitHub 搜索参数
const (
	MaxResultsPerSearch = 50  // 每次搜索最多拉取的 issue 数
	MinRepoStars        = 50  // 仓库 star 下限，过滤掉低质量仓库
	MaxIssueAgeDays     = 365 // 忽略超过一年的旧 issue
	RepoActivityDays    = 180 // 健康仓库要求近半年内有更新
	RepoFreshDays       = 30  // 近一个月内有更新的仓库在健康度评分里额外加分
)

// LLM 分析参数
const (
	IssuesToAnalyze = 20 // 只把排名靠前的 N 条送给 AI，控制 token 成本
	ModelName       = "gemini-2.5-flash-lite"
)

// 缓存 TTL：搜索结果短（上游 issue 变化频繁），分析结果长（输入不变则结果不变）
const (
	SearchCacheTTL   = 15 * time.Minute
	AnalysisCacheTTL = 24 * time.Hour
)

// DefaultWeights 四个评分维度的默认权重，总和必须等于 1.0（系统不变量）
type Weights struct {
	Difficulty float64
	Time       float64
	Health     float64
	Clarity    float64
}

// DefaultWeights 难度匹配 40% / 耗时匹配 30% / 仓库健康 15% / 清晰度 15%
func DefaultWeights() Weights {
	return Weights{
		Difficulty: 0.40,
		Time:       0.30,
		Health:     0.15,
		Clarity:    0.15,
	}
}

// 全局默认的标签->难度映射（仓库没有自定义映射时的兜底）
var (
	BeginnerLabels = []string{
		"good first issue",
		"beginner",
		"easy",
		"starter",
		"first-timers-only",
		"good-first-issue",
		"low-hanging-fruit",
	}
	IntermediateLabels = []string{
		"help wanted",
		"intermediate",
		"medium",
	}
	AdvancedLabels = []string{
		"advanced",
		"hard",
		"expert",
		"complex",
	}
)

// TopicKeywords 搜索查询用的主题关键词表
var TopicKeywords = map[string][]string{
	"ai":       {"machine-learning", "deep-learning", "artificial-intelligence", "ml", "ai"},
	"web":      {"web", "frontend", "react", "vue", "angular", "css", "html"},
	"backend":  {"backend", "api", "server", "database", "rest", "graphql"},
	"devops":   {"devops", "docker", "kubernetes", "ci-cd", "infrastructure"},
	"mobile":   {"mobile", "ios", "android", "react-native", "flutter"},
	"data":     {"data-science", "analytics", "visualization", "pandas"},
	"security": {"security", "authentication", "encryption"},
}

// LoadEnv 读取 .env 文件（不存在也没关系，环境变量可能已经设置好了）
func LoadEnv() {
	_ = godotenv.Load()
}

// GitHubToken 可以为空：匿名访问限制 60次/小时，带 token 是 5000次/小时
func GitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// GeminiKey AI 鉴定的必要凭证，缺失时整个运行直接失败，不做降级
func GeminiKey() (string, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		return "", common.NewError(common.ErrCodeConfig, "缺少 GEMINI_API_KEY 环境变量，请先在 .env 或 shell 中设置")
	}
	return key, nil
}

// CacheDir 缓存根目录，两个命名空间各占一个子目录
func CacheDir() string {
	if dir := os.Getenv("ISSUE_SCOUT_CACHE_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(baseDir(), ".cache")
}

// DataDir 收藏夹/历史/标签映射的 JSON 文件目录
func DataDir() string {
	if dir := os.Getenv("ISSUE_SCOUT_DATA_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(baseDir(), ".data")
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".issue-scout"
	}
	return filepath.Join(home, ".issue-scout")
}
