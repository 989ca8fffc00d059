package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-issue-scout/internal/domain"
)

const validResponseJSON = `{
	"difficulty": "beginner",
	"difficulty_confidence": "high",
	"difficulty_reasoning": "改动范围很小，有现成的测试覆盖",
	"estimated_time": "half_day",
	"time_confidence": "medium",
	"time_reasoning": "需要先熟悉解析器的入口",
	"summary": "修复解析器在空输入上的崩溃",
	"technical_requirements": ["Go", "递归下降解析"],
	"clarity_score": 8,
	"clarity_confidence": "high",
	"clarity_reasoning": "有完整的复现步骤",
	"recommendation": "适合作为第一个贡献"
}`

func TestParseAIResponse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		verify      func(*testing.T, *domain.Analysis)
	}{
		{
			name:  "标准JSON响应",
			input: validResponseJSON,
			verify: func(t *testing.T, a *domain.Analysis) {
				assert.Equal(t, domain.Beginner, a.Difficulty)
				assert.Equal(t, domain.ConfidenceHigh, a.DifficultyConfidence)
				assert.Equal(t, domain.HalfDay, a.EstimatedTime)
				assert.Equal(t, domain.ConfidenceMedium, a.TimeConfidence)
				assert.Equal(t, 8, a.ClarityScore)
				assert.Equal(t, []string{"Go", "递归下降解析"}, a.TechnicalRequirements)
				assert.Equal(t, "修复解析器在空输入上的崩溃", a.Summary)
				assert.NoError(t, a.Validate())
			},
		},
		{
			name:  "JSON外面裹着Markdown标记",
			input: "```json\n" + validResponseJSON + "\n```",
			verify: func(t *testing.T, a *domain.Analysis) {
				assert.Equal(t, domain.Beginner, a.Difficulty)
				assert.NoError(t, a.Validate())
			},
		},
		{
			name:  "JSON前后有多余文字",
			input: "好的，以下是分析结果：\n" + validResponseJSON + "\n希望对你有帮助",
			verify: func(t *testing.T, a *domain.Analysis) {
				assert.Equal(t, "适合作为第一个贡献", a.Recommendation)
			},
		},
		{
			name:  "枚举值大小写混乱也能收敛",
			input: strings.Replace(strings.Replace(validResponseJSON, `"beginner"`, `" Beginner "`, 1), `"half_day"`, `"HALF_DAY"`, 1),
			verify: func(t *testing.T, a *domain.Analysis) {
				assert.Equal(t, domain.Beginner, a.Difficulty)
				assert.Equal(t, domain.HalfDay, a.EstimatedTime)
			},
		},
		{
			name:  "AI编造的难度值收敛成unknown",
			input: strings.Replace(validResponseJSON, `"beginner"`, `"super-hard"`, 1),
			verify: func(t *testing.T, a *domain.Analysis) {
				assert.Equal(t, domain.DifficultyUnknown, a.Difficulty)
				// unknown 过不了校验，调用方会把这条丢弃
				assert.Error(t, a.Validate())
			},
		},
		{
			name:  "置信度缺失默认medium",
			input: strings.Replace(validResponseJSON, `"difficulty_confidence": "high",`, "", 1),
			verify: func(t *testing.T, a *domain.Analysis) {
				assert.Equal(t, domain.ConfidenceMedium, a.DifficultyConfidence)
			},
		},
		{
			name:        "非法JSON",
			input:       `{"invalid": json}`,
			expectError: true,
		},
		{
			name:        "完全没有JSON",
			input:       `Just some text without JSON`,
			expectError: true,
		},
		{
			name:        "空字符串",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseAIResponse(tt.input)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				tt.verify(t, result)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	issue := &domain.Issue{
		ID:       123,
		RepoName: "owner/repo",
		Title:    "Fix parser crash on empty input",
		Body:     "Steps to reproduce: ...",
		Labels:   []string{"good first issue", "bug"},
	}
	prefs := domain.Preferences{Skill: domain.Beginner, Time: domain.HalfDay}

	t.Run("画像和issue内容都要进prompt", func(t *testing.T) {
		prompt := buildPrompt(issue, prefs, domain.DifficultyUnknown)

		assert.Contains(t, prompt, "owner/repo")
		assert.Contains(t, prompt, "Fix parser crash on empty input")
		assert.Contains(t, prompt, "good first issue")
		assert.Contains(t, prompt, "beginner")
		assert.Contains(t, prompt, "2-4小时")
		// 没有难度提示就不要提
		assert.NotContains(t, prompt, "标签暗示")
	})

	t.Run("有标签提示时写进prompt", func(t *testing.T) {
		prompt := buildPrompt(issue, prefs, domain.Intermediate)
		assert.Contains(t, prompt, "标签暗示的难度是 intermediate")
	})

	t.Run("star数未补全时不写", func(t *testing.T) {
		// 搜索接口不带 star 数，健康度探查失败时它保持为 0，
		// 不能让 AI 把 0 star 当成真实数据
		prompt := buildPrompt(issue, prefs, domain.DifficultyUnknown)
		assert.NotContains(t, prompt, "stars")
	})

	t.Run("star数和简介补全后都要进prompt", func(t *testing.T) {
		enriched := *issue
		enriched.RepoStars = 777
		enriched.RepoDescription = "一个终端小工具"

		prompt := buildPrompt(&enriched, prefs, domain.DifficultyUnknown)
		assert.Contains(t, prompt, "777 stars")
		assert.Contains(t, prompt, "一个终端小工具")
	})

	t.Run("超长正文要截断", func(t *testing.T) {
		longIssue := *issue
		longIssue.Body = strings.Repeat("a", 10000)
		prompt := buildPrompt(&longIssue, prefs, domain.DifficultyUnknown)
		assert.Less(t, len(prompt), 6000)
	})
}
