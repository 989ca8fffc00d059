package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-issue-scout/internal/domain"
)

func TestHistoryRecordViewAndIsSeen(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	assert.False(t, store.IsSeen("owner/repo", 1))

	require.NoError(t, store.RecordView(1, "owner/repo", "修复崩溃", "beginner", "https://github.com/owner/repo/issues/1"))

	assert.True(t, store.IsSeen("owner/repo", 1))
	assert.False(t, store.IsSeen("owner/repo", 2))
	assert.False(t, store.IsSeen("other/repo", 1))
}

func TestHistoryRepeatViewAccumulates(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	now := time.Now()
	store.nowFunc = func() time.Time { return now }
	require.NoError(t, store.RecordView(1, "owner/repo", "x", "beginner", "url"))

	// 用户标注过的状态不能被重复浏览覆盖
	require.NoError(t, store.SetStatus("owner/repo#1", StatusInterested))

	store.nowFunc = func() time.Time { return now.Add(time.Hour) }
	require.NoError(t, store.RecordView(1, "owner/repo", "x", "beginner", "url"))

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ViewCount)
	assert.True(t, list[0].FirstViewedAt.Equal(now))
	assert.True(t, list[0].LastViewedAt.Equal(now.Add(time.Hour)))
	assert.Equal(t, StatusInterested, list[0].Status)
}

func TestHistorySetStatus(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.RecordView(1, "owner/repo", "x", "beginner", "url"))
	require.NoError(t, store.SetStatus("owner/repo#1", StatusCompleted))

	list := store.List()
	assert.Equal(t, StatusCompleted, list[0].Status)

	assert.Error(t, store.SetStatus("owner/repo#999", StatusViewed))
}

func TestParseIssueStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    IssueStatus
		wantErr bool
	}{
		{"合法状态", "interested", StatusInterested, false},
		{"合法状态completed", "completed", StatusCompleted, false},
		{"非法状态", "done", "", true},
		{"空字符串", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := ParseIssueStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, status)
			}
		})
	}
}

func TestHistoryFilterUnseen(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.RecordView(2, "owner/repo", "看过的", "beginner", "url"))

	issues := []*domain.Issue{
		{ID: 1, RepoName: "owner/repo", Title: "没看过A"},
		{ID: 2, RepoName: "owner/repo", Title: "看过的"},
		{ID: 3, RepoName: "owner/repo", Title: "没看过B"},
	}

	unseen := store.FilterUnseen(issues)

	// 看过的被滤掉，顺序保持
	require.Len(t, unseen, 2)
	assert.Equal(t, 1, unseen[0].ID)
	assert.Equal(t, 3, unseen[1].ID)
}

func TestHistoryStatusCounts(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.RecordView(1, "owner/repo", "a", "beginner", "url"))
	require.NoError(t, store.RecordView(2, "owner/repo", "b", "beginner", "url"))
	require.NoError(t, store.RecordView(3, "owner/repo", "c", "beginner", "url"))
	require.NoError(t, store.SetStatus("owner/repo#2", StatusCompleted))

	counts := store.StatusCounts()
	assert.Equal(t, 2, counts[StatusViewed])
	assert.Equal(t, 1, counts[StatusCompleted])
}

func TestHistoryClear(t *testing.T) {
	store, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.RecordView(1, "owner/repo", "a", "beginner", "url"))
	require.NoError(t, store.Clear())

	assert.Equal(t, 0, store.Len())
	assert.False(t, store.IsSeen("owner/repo", 1))
}

func TestHistoryPersistAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	store, err := NewHistoryStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.RecordView(1, "owner/repo", "持久化", "beginner", "url"))
	require.NoError(t, store.SetStatus("owner/repo#1", StatusAttempted))

	reopened, err := NewHistoryStore(dir)
	require.NoError(t, err)

	assert.True(t, reopened.IsSeen("owner/repo", 1))
	list := reopened.List()
	require.Len(t, list, 1)
	assert.Equal(t, StatusAttempted, list[0].Status)
}
