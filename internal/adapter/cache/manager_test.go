package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-issue-scout/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return manager
}

func TestManagerSearchResultsRoundTrip(t *testing.T) {
	manager := newTestManager(t)

	issues := []*domain.Issue{
		{ID: 1, RepoName: "owner/repo", Title: "修复解析器崩溃", URL: "https://github.com/owner/repo/issues/1"},
		{ID: 2, RepoName: "owner/repo", Title: "文档里的死链", URL: "https://github.com/owner/repo/issues/2"},
	}

	require.NoError(t, manager.SetSearchResults("cli", "go", domain.Beginner, issues))

	cached, ok := manager.GetSearchResults("cli", "go", domain.Beginner)
	require.True(t, ok)
	require.Len(t, cached, 2)
	assert.Equal(t, "修复解析器崩溃", cached[0].Title)
	assert.Equal(t, 2, cached[1].ID)
}

func TestManagerSearchMissOnDifferentQuery(t *testing.T) {
	manager := newTestManager(t)

	issues := []*domain.Issue{{ID: 1, RepoName: "owner/repo", Title: "x"}}
	require.NoError(t, manager.SetSearchResults("cli", "go", domain.Beginner, issues))

	// 任何一个查询参数变了都是另一次搜索
	_, ok := manager.GetSearchResults("cli", "rust", domain.Beginner)
	assert.False(t, ok)
}

func TestManagerNamespaceIsolation(t *testing.T) {
	manager := newTestManager(t)

	require.NoError(t, manager.Search().Set("k", []byte("search-value"), time.Hour))
	require.NoError(t, manager.Analysis().Set("k", []byte("analysis-value"), time.Hour))

	// 清掉搜索命名空间，分析命名空间纹丝不动
	require.NoError(t, manager.ClearSearch())

	_, ok := manager.Search().Get("k")
	assert.False(t, ok)

	value, ok := manager.Analysis().Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("analysis-value"), value)
}

func TestManagerClearAll(t *testing.T) {
	manager := newTestManager(t)

	require.NoError(t, manager.Search().Set("a", []byte("1"), time.Hour))
	require.NoError(t, manager.Analysis().Set("b", []byte("2"), time.Hour))

	require.NoError(t, manager.ClearAll())

	_, okSearch := manager.Search().Get("a")
	_, okAnalysis := manager.Analysis().Get("b")
	assert.False(t, okSearch)
	assert.False(t, okAnalysis)
}

func TestManagerStats(t *testing.T) {
	manager := newTestManager(t)

	require.NoError(t, manager.Analysis().Set("k", []byte("v"), time.Hour))
	manager.Analysis().Get("k")  // 命中
	manager.Search().Get("none") // 未命中

	stats := manager.Stats()
	assert.Equal(t, 1, stats.Analysis.Hits)
	assert.Equal(t, 1, stats.Search.Misses)
	assert.Greater(t, stats.SizeBytes, int64(0))
}
