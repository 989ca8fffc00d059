package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github-issue-scout/internal/common"
	"github-issue-scout/internal/config"
	"github-issue-scout/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// Scouter 实现了 port.Scouter 接口
type Scouter struct {
	client *github.Client
}

// NewScouter 初始化 GitHub 客户端
// token: GitHub Personal Access Token (如果是空字符串，就是匿名访问，限制 60次/小时)
func NewScouter(token string) *Scouter {
	var client *github.Client

	if token == "" {
		client = github.NewClient(nil)
	} else {
		ctx := context.Background()
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(ctx, ts)
		client = github.NewClient(tc)
	}

	return &Scouter{client: client}
}

// Search 按用户画像搜索开放 issue
//
// 查询策略：只要开放的、没人认领的 issue，按最近更新时间排序，
// 这样排在前面的都是仓库维护者还在照看的活 issue
func (s *Scouter) Search(ctx context.Context, prefs domain.Preferences, max int) ([]*domain.Issue, error) {
	query := buildQuery(prefs)

	perPage := max
	if perPage <= 0 || perPage > config.MaxResultsPerSearch {
		perPage = config.MaxResultsPerSearch
	}
	opts := &github.SearchOptions{
		Sort:  "updated",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	var result *github.IssuesSearchResult
	err := common.Do(ctx, func() error {
		var apiErr error
		result, _, apiErr = s.client.Search.Issues(ctx, query, opts)
		return apiErr
	},
		common.WithMaxRetries(3),
		common.WithInitialDelay(time.Second),
	)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI, "GitHub 搜索 issue 失败", err)
	}

	// GitHub 的数据结构转换为 Domain 实体 (DTO 转换)
	var issues []*domain.Issue
	for _, item := range result.Issues {
		// Pull Request 也会混进 issue 搜索结果里，剔掉
		if item.IsPullRequest() {
			continue
		}

		issue := &domain.Issue{
			ID:            item.GetNumber(),
			RepoName:      repoNameFromURL(item.GetRepositoryURL()),
			Title:         item.GetTitle(),
			Body:          item.GetBody(),
			URL:           item.GetHTMLURL(),
			CreatedAt:     item.GetCreatedAt().Time,
			UpdatedAt:     item.GetUpdatedAt().Time,
			CommentsCount: item.GetComments(),
		}
		for _, label := range item.Labels {
			issue.Labels = append(issue.Labels, label.GetName())
		}
		for _, assignee := range item.Assignees {
			issue.Assignees = append(issue.Assignees, assignee.GetLogin())
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

// CheckRepoHealth 探查仓库健康度
// 单独一次 API 调用，调用方决定对哪些仓库值得花这个配额
func (s *Scouter) CheckRepoHealth(ctx context.Context, repoName string) (*domain.RepoHealth, error) {
	owner, name, err := splitRepoName(repoName)
	if err != nil {
		return nil, err
	}

	var repo *github.Repository
	err = common.Do(ctx, func() error {
		var apiErr error
		repo, _, apiErr = s.client.Repositories.Get(ctx, owner, name)
		return apiErr
	},
		common.WithMaxRetries(3),
		common.WithInitialDelay(time.Second),
	)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI, fmt.Sprintf("获取仓库 %s 信息失败", repoName), err)
	}

	daysSinceUpdate := int(time.Since(repo.GetPushedAt().Time).Hours() / 24)

	health := &domain.RepoHealth{
		Stars:                repo.GetStargazersCount(),
		Forks:                repo.GetForksCount(),
		OpenIssues:           repo.GetOpenIssuesCount(),
		Description:          repo.GetDescription(),
		DaysSinceUpdate:      daysSinceUpdate,
		HasContributingGuide: s.hasContributingGuide(ctx, owner, name),
	}
	health.IsHealthy = daysSinceUpdate < config.RepoActivityDays && health.Stars >= config.MinRepoStars

	return health, nil
}

// hasContributingGuide 贡献指南存不存在只看根目录的 CONTRIBUTING.md
// 查不到（404 或网络错误）一律按没有处理，不值得为它重试
func (s *Scouter) hasContributingGuide(ctx context.Context, owner, name string) bool {
	content, _, _, err := s.client.Repositories.GetContents(ctx, owner, name, "CONTRIBUTING.md", nil)
	return err == nil && content != nil
}

// buildQuery 把用户画像翻译成 GitHub 搜索语法
//
// 固定条件：开放的 issue、没人认领、仓库 star 达标、一年内有动静
// 难度条件：beginner 要 "good first issue" 标签，intermediate 要 "help wanted"，
// advanced 不加标签限制（硬 issue 通常没人给它贴新手标签）
func buildQuery(prefs domain.Preferences) string {
	parts := []string{"is:issue", "is:open", "no:assignee"}

	if prefs.Language != "" {
		parts = append(parts, fmt.Sprintf("language:%s", strings.ToLower(prefs.Language)))
	}

	switch prefs.Skill {
	case domain.Beginner:
		parts = append(parts, `label:"good first issue"`)
	case domain.Intermediate:
		parts = append(parts, `label:"help wanted"`)
	}

	if keyword := topicKeyword(prefs.Topic); keyword != "" {
		parts = append(parts, fmt.Sprintf("topic:%s", keyword))
	}

	parts = append(parts, fmt.Sprintf("stars:>%d", config.MinRepoStars))

	oldest := time.Now().AddDate(0, 0, -config.MaxIssueAgeDays).Format("2006-01-02")
	parts = append(parts, fmt.Sprintf("created:>%s", oldest))

	return strings.Join(parts, " ")
}

// topicKeyword 主题映射到搜索关键词，映射表里没有的主题原样当关键词用
func topicKeyword(topic string) string {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return ""
	}
	if keywords, ok := config.TopicKeywords[topic]; ok && len(keywords) > 0 {
		return keywords[0]
	}
	return topic
}

// repoNameFromURL 从 API URL 中抠出 "owner/repo"
// 形如 https://api.github.com/repos/owner/repo
func repoNameFromURL(url string) string {
	const marker = "/repos/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	return url[idx+len(marker):]
}

func splitRepoName(repoName string) (owner, name string, err error) {
	parts := strings.SplitN(repoName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("仓库名格式不对: %q (要求 owner/repo)", repoName))
	}
	return parts[0], parts[1], nil
}
