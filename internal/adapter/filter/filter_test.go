package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github-issue-scout/internal/domain"
)

func TestIssueFilter_FilterByAge(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		issues     []*domain.Issue
		maxDaysOld int
		verify     func(*testing.T, []*domain.Issue)
	}{
		{
			name: "过滤掉老issue",
			issues: []*domain.Issue{
				{ID: 1, Title: "new-issue", CreatedAt: now.AddDate(0, 0, -30)},
				{ID: 2, Title: "old-issue", CreatedAt: now.AddDate(0, 0, -400)},
			},
			maxDaysOld: 365,
			verify: func(t *testing.T, result []*domain.Issue) {
				assert.Equal(t, 1, len(result))
				assert.Equal(t, "new-issue", result[0].Title)
			},
		},
		{
			name: "保留边界issue",
			issues: []*domain.Issue{
				{ID: 1, Title: "boundary-issue", CreatedAt: now.AddDate(0, 0, -10)},
			},
			maxDaysOld: 10,
			verify: func(t *testing.T, result []*domain.Issue) {
				assert.Equal(t, 1, len(result))
			},
		},
		{
			name:       "空列表",
			issues:     []*domain.Issue{},
			maxDaysOld: 365,
			verify: func(t *testing.T, result []*domain.Issue) {
				assert.Equal(t, 0, len(result))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewIssueFilter()
			f.nowFunc = func() time.Time { return now }
			result := f.FilterByAge(tt.issues, tt.maxDaysOld)
			tt.verify(t, result)
		})
	}
}

func TestIssueFilter_FilterUnassigned(t *testing.T) {
	f := NewIssueFilter()

	issues := []*domain.Issue{
		{ID: 1, Title: "没人认领"},
		{ID: 2, Title: "有人认领了", Assignees: []string{"somebody"}},
		{ID: 3, Title: "也没人认领", Assignees: nil},
	}

	result := f.FilterUnassigned(issues)

	assert.Equal(t, 2, len(result))
	assert.Equal(t, 1, result[0].ID)
	assert.Equal(t, 3, result[1].ID)
}
