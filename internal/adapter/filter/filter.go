package filter

import (
	"time"

	"github-issue-scout/internal/domain"
)

// IssueFilter 实现了 port.Filter 接口
//
// 搜索查询本身已经带了 no:assignee 和时间条件，但缓存里的结果可能已经过时
// （15分钟内 issue 可能被人认领），所以展示前在本地再过一遍硬条件
type IssueFilter struct {
	nowFunc func() time.Time
}

// NewIssueFilter 创建新的过滤器实例
func NewIssueFilter() *IssueFilter {
	return &IssueFilter{nowFunc: time.Now}
}

// FilterByAge 过滤掉创建时间超过指定天数的 issue
// 太老的 issue 大概率是没人想修或者修不动的
func (f *IssueFilter) FilterByAge(issues []*domain.Issue, maxDaysOld int) []*domain.Issue {
	maxAge := time.Duration(maxDaysOld) * 24 * time.Hour
	current := time.Now()
	if f != nil && f.nowFunc != nil {
		current = f.nowFunc()
	}

	var filtered []*domain.Issue
	for _, issue := range issues {
		if current.Sub(issue.CreatedAt) <= maxAge {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// FilterUnassigned 过滤掉已经有人认领的 issue
func (f *IssueFilter) FilterUnassigned(issues []*domain.Issue) []*domain.Issue {
	var filtered []*domain.Issue
	for _, issue := range issues {
		if len(issue.Assignees) == 0 {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}
