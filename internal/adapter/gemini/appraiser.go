package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github-issue-scout/internal/common"
	"github-issue-scout/internal/config"
	"github-issue-scout/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiAppraiser struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// 定义一个内部结构体来接收 AI 返回的 JSON
type aiResponse struct {
	Difficulty           string   `json:"difficulty"`
	DifficultyConfidence string   `json:"difficulty_confidence"`
	DifficultyReasoning  string   `json:"difficulty_reasoning"`
	EstimatedTime        string   `json:"estimated_time"`
	TimeConfidence       string   `json:"time_confidence"`
	TimeReasoning        string   `json:"time_reasoning"`
	Summary              string   `json:"summary"`
	TechnicalRequirement []string `json:"technical_requirements"`
	ClarityScore         int      `json:"clarity_score"`
	ClarityConfidence    string   `json:"clarity_confidence"`
	ClarityReasoning     string   `json:"clarity_reasoning"`
	Recommendation       string   `json:"recommendation"`
}

func NewGeminiAppraiser(ctx context.Context, apiKey string) (*GeminiAppraiser, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(config.ModelName)
	// 强制要求返回 JSON，降低解析错误的概率
	model.ResponseMIMEType = "application/json"

	return &GeminiAppraiser{
		client: client,
		model:  model,
	}, nil
}

// Appraise 鉴定单条 issue：难度、耗时、清晰度，各带置信度
// hint 是标签映射推出来的难度提示，写进 prompt 供 AI 参考，AI 可以不同意
func (g *GeminiAppraiser) Appraise(ctx context.Context, issue *domain.Issue, prefs domain.Preferences, hint domain.Difficulty) (*domain.Analysis, error) {
	prompt := buildPrompt(issue, prefs, hint)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "AI 调用失败", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, common.NewError(common.ErrCodeAIProcessing, "AI 返回内容为空")
	}

	part := resp.Candidates[0].Content.Parts[0]
	jsonStr, ok := part.(genai.Text)
	if !ok {
		return nil, common.NewError(common.ErrCodeAIProcessing, "AI 返回格式错误")
	}

	return parseAIResponse(string(jsonStr))
}

// Close 释放底层 gRPC 连接
func (g *GeminiAppraiser) Close() error {
	return g.client.Close()
}

// buildPrompt 构造鉴定 prompt
// 用户画像写进去是为了让 recommendation 面向这个具体的人，而不是泛泛而谈
func buildPrompt(issue *domain.Issue, prefs domain.Preferences, hint domain.Difficulty) string {
	var sb strings.Builder

	sb.WriteString(`你是一位经验丰富的开源项目维护者，擅长评估 GitHub issue 对新贡献者的适配程度。请分析以下 issue：

`)
	// star 数来自健康度探查的补全，没补上就别写，免得 AI 把 0 当成真实数据
	if issue.RepoStars > 0 {
		fmt.Fprintf(&sb, "仓库: %s (%d stars)\n", issue.RepoName, issue.RepoStars)
	} else {
		fmt.Fprintf(&sb, "仓库: %s\n", issue.RepoName)
	}
	if issue.RepoDescription != "" {
		fmt.Fprintf(&sb, "仓库简介: %s\n", issue.RepoDescription)
	}
	fmt.Fprintf(&sb, "标题: %s\n", issue.Title)
	fmt.Fprintf(&sb, "标签: %s\n", strings.Join(issue.Labels, ", "))
	fmt.Fprintf(&sb, "评论数: %d\n", issue.CommentsCount)
	fmt.Fprintf(&sb, "正文:\n%s\n\n", truncate(issue.Body, 4000))

	fmt.Fprintf(&sb, "读者画像: 技能等级 %s，单次可投入时间 %s\n", prefs.Skill, prefs.Time.Label())
	if hint.Known() {
		fmt.Fprintf(&sb, "仓库标签暗示的难度是 %s，仅供参考，你可以不同意\n", hint)
	}

	sb.WriteString(`
请严格按照 JSON 格式返回分析结果，包含以下字段：
1. difficulty: 难度等级，只能是 beginner / intermediate / advanced 之一
2. difficulty_confidence: 你对难度判断的把握，只能是 high / medium / low 之一
3. difficulty_reasoning: 一句话的难度判断理由（中文）
4. estimated_time: 预估耗时档位，只能是 quick_win / half_day / full_day / weekend / deep_dive 之一
5. time_confidence: 耗时判断的把握 (high / medium / low)
6. time_reasoning: 一句话的耗时判断理由（中文）
7. summary: 一句话概括这个 issue 要做什么（中文）
8. technical_requirements: 所需技术点的字符串数组
9. clarity_score (1-10): issue 描述的清晰程度，10 表示复现步骤和验收标准都齐全
10. clarity_confidence: 清晰度判断的把握 (high / medium / low)
11. clarity_reasoning: 一句话的清晰度判断理由（中文）
12. recommendation: 面向上述读者画像的一句话建议（中文）

请直接返回 JSON，不要包含 Markdown 格式标记。
`)

	return sb.String()
}

// parseAIResponse 解析 AI 返回的原文，独立成函数方便测试
// 智能寻找 JSON 的起止位置：即使 AI 返回 "```json { ... } ```"，
// 也能精准抠出中间的 { ... }
func parseAIResponse(rawContent string) (*domain.Analysis, error) {
	start := strings.Index(rawContent, "{")
	end := strings.LastIndex(rawContent, "}")

	if start == -1 || end == -1 || end <= start {
		// 找不到花括号，说明 AI 没返回 JSON
		return nil, common.NewError(common.ErrCodeAIProcessing, fmt.Sprintf("无法提取 JSON, AI 原文: %s", truncate(rawContent, 200)))
	}

	cleanJson := rawContent[start : end+1]

	var res aiResponse
	if err := json.Unmarshal([]byte(cleanJson), &res); err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, fmt.Sprintf("JSON 解析失败, 原文: %s", truncate(cleanJson, 200)), err)
	}

	// 枚举字段统一走 Parse 收敛，AI 偶尔的大小写或空格问题在这里消化掉
	analysis := &domain.Analysis{
		Difficulty:           domain.ParseDifficulty(res.Difficulty),
		DifficultyConfidence: domain.ParseConfidence(res.DifficultyConfidence),
		DifficultyReasoning:  res.DifficultyReasoning,

		EstimatedTime:  domain.ParseTimeBudget(res.EstimatedTime),
		TimeConfidence: domain.ParseConfidence(res.TimeConfidence),
		TimeReasoning:  res.TimeReasoning,

		Summary:               res.Summary,
		TechnicalRequirements: res.TechnicalRequirement,

		ClarityScore:      res.ClarityScore,
		ClarityConfidence: domain.ParseConfidence(res.ClarityConfidence),
		ClarityReasoning:  res.ClarityReasoning,

		Recommendation: res.Recommendation,
	}

	return analysis, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
