package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github-issue-scout/internal/domain"
)

// Mock implementations for testing

type MockScouter struct {
	mock.Mock
}

func (m *MockScouter) Search(ctx context.Context, prefs domain.Preferences, max int) ([]*domain.Issue, error) {
	args := m.Called(ctx, prefs, max)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Issue), args.Error(1)
}

func (m *MockScouter) CheckRepoHealth(ctx context.Context, repoName string) (*domain.RepoHealth, error) {
	args := m.Called(ctx, repoName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepoHealth), args.Error(1)
}

type MockSearchCache struct {
	mock.Mock
}

func (m *MockSearchCache) GetSearchResults(topic, language string, difficulty domain.Difficulty) ([]*domain.Issue, bool) {
	args := m.Called(topic, language, difficulty)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]*domain.Issue), args.Bool(1)
}

func (m *MockSearchCache) SetSearchResults(topic, language string, difficulty domain.Difficulty, issues []*domain.Issue) error {
	args := m.Called(topic, language, difficulty, issues)
	return args.Error(0)
}

// passFilter 初筛直通，过滤逻辑在 filter 包自己的测试里覆盖
type passFilter struct{}

func (passFilter) FilterByAge(issues []*domain.Issue, _ int) []*domain.Issue { return issues }
func (passFilter) FilterUnassigned(issues []*domain.Issue) []*domain.Issue   { return issues }

type MockViewlog struct {
	mock.Mock
}

func (m *MockViewlog) IsSeen(repoName string, issueID int) bool {
	args := m.Called(repoName, issueID)
	return args.Bool(0)
}

func (m *MockViewlog) RecordView(issueID int, repoName, title, difficulty, url string) error {
	args := m.Called(issueID, repoName, title, difficulty, url)
	return args.Error(0)
}

// finderFixture 一次测试所需的全套 mock 和服务
type finderFixture struct {
	scouter     *MockScouter
	searchCache *MockSearchCache
	history     *MockViewlog
	appraiser   *MockAppraiser
	analysCache *MockAnalysisCache
	labels      *MockLabelMapper
	finder      *FinderService
}

func newFinderFixture(t *testing.T) *finderFixture {
	t.Helper()

	f := &finderFixture{
		scouter:     new(MockScouter),
		searchCache: new(MockSearchCache),
		history:     new(MockViewlog),
		appraiser:   new(MockAppraiser),
		analysCache: new(MockAnalysisCache),
		labels:      new(MockLabelMapper),
	}
	analysis := NewAnalysisService(f.appraiser, f.analysCache, f.labels)
	f.finder = NewFinderService(f.scouter, passFilter{}, analysis, NewDefaultScorer(), f.searchCache, f.history)
	return f
}

// stubAnalysisPath 让分析链路全部走通：缓存未命中 → AI 成功
func (f *finderFixture) stubAnalysisPath() {
	f.analysCache.On("Get", mock.Anything).Return(nil, false)
	f.analysCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.labels.On("DifficultyHint", mock.Anything, mock.Anything).Return(domain.DifficultyUnknown, false)
	f.appraiser.On("Appraise", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(validAnalysis(), nil)
}

func TestFindIssuesFullPipeline(t *testing.T) {
	f := newFinderFixture(t)

	issues := []*domain.Issue{testIssue(1), testIssue(2)}
	health := &domain.RepoHealth{Stars: 1000, DaysSinceUpdate: 5, HasContributingGuide: true, IsHealthy: true}

	f.searchCache.On("GetSearchResults", "cli", "go", domain.Beginner).Return(nil, false)
	f.scouter.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(issues, nil)
	f.searchCache.On("SetSearchResults", "cli", "go", domain.Beginner, issues).Return(nil)
	f.stubAnalysisPath()
	// 两条 issue 同一个仓库，健康度只探查一次
	f.scouter.On("CheckRepoHealth", mock.Anything, "owner/repo").Return(health, nil).Once()
	f.history.On("RecordView", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	results, err := f.finder.FindIssues(context.Background(), testPrefs(), FindOptions{})

	require.NoError(t, err)
	require.Len(t, results, 2)
	// 画像完全匹配 + 仓库满分健康度：1.0*0.4 + 1.0*0.3 + 1.0*0.15 + 0.8*0.15 = 0.97
	assert.InDelta(t, 0.97, results[0].Total, 1e-9)
	assert.Equal(t, domain.ConfidenceHigh, results[0].OverallConfidence)

	f.scouter.AssertExpectations(t)
	f.searchCache.AssertExpectations(t)
}

func TestFindIssuesUsesSearchCache(t *testing.T) {
	f := newFinderFixture(t)

	issues := []*domain.Issue{testIssue(1)}

	// 搜索缓存命中，绝不打 GitHub 搜索
	f.searchCache.On("GetSearchResults", "cli", "go", domain.Beginner).Return(issues, true)
	f.stubAnalysisPath()
	f.scouter.On("CheckRepoHealth", mock.Anything, "owner/repo").Return(nil, errors.New("rate limited"))
	f.history.On("RecordView", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	results, err := f.finder.FindIssues(context.Background(), testPrefs(), FindOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	// 健康度探查失败不阻断，置信度被压到 low
	assert.Equal(t, domain.ConfidenceLow, results[0].OverallConfidence)

	f.scouter.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	f.searchCache.AssertNotCalled(t, "SetSearchResults", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFindIssuesHideSeen(t *testing.T) {
	f := newFinderFixture(t)

	issues := []*domain.Issue{testIssue(1), testIssue(2), testIssue(3)}

	f.searchCache.On("GetSearchResults", mock.Anything, mock.Anything, mock.Anything).Return(issues, true)
	f.history.On("IsSeen", "owner/repo", 1).Return(false)
	f.history.On("IsSeen", "owner/repo", 2).Return(true) // 看过，要滤掉
	f.history.On("IsSeen", "owner/repo", 3).Return(false)
	f.stubAnalysisPath()
	f.scouter.On("CheckRepoHealth", mock.Anything, mock.Anything).Return(nil, errors.New("skip"))
	f.history.On("RecordView", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	results, err := f.finder.FindIssues(context.Background(), testPrefs(), FindOptions{HideSeen: true})

	require.NoError(t, err)
	require.Len(t, results, 2)
	ids := []int{results[0].Issue.ID, results[1].Issue.ID}
	assert.NotContains(t, ids, 2)
}

func TestFindIssuesSearchFails(t *testing.T) {
	f := newFinderFixture(t)

	f.searchCache.On("GetSearchResults", mock.Anything, mock.Anything, mock.Anything).Return(nil, false)
	f.scouter.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("network error"))

	_, err := f.finder.FindIssues(context.Background(), testPrefs(), FindOptions{})

	assert.Error(t, err)
}

func TestFindIssuesNoResults(t *testing.T) {
	f := newFinderFixture(t)

	f.searchCache.On("GetSearchResults", mock.Anything, mock.Anything, mock.Anything).Return([]*domain.Issue{}, true)

	_, err := f.finder.FindIssues(context.Background(), testPrefs(), FindOptions{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "没有符合条件的 issue")
}

func TestFindIssuesAllAnalysisFail(t *testing.T) {
	f := newFinderFixture(t)

	issues := []*domain.Issue{testIssue(1)}

	f.searchCache.On("GetSearchResults", mock.Anything, mock.Anything, mock.Anything).Return(issues, true)
	f.scouter.On("CheckRepoHealth", mock.Anything, mock.Anything).Return(nil, errors.New("skip"))
	f.analysCache.On("Get", mock.Anything).Return(nil, false)
	f.labels.On("DifficultyHint", mock.Anything, mock.Anything).Return(domain.DifficultyUnknown, false)
	f.appraiser.On("Appraise", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	_, err := f.finder.FindIssues(context.Background(), testPrefs(), FindOptions{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "没有任何 issue 通过 AI 鉴定")
}

func TestFindIssuesBackfillsRepoMetadata(t *testing.T) {
	f := newFinderFixture(t)

	// 搜索接口不返回仓库详情，star 数和简介必须在鉴定之前由健康度探查补全
	issues := []*domain.Issue{testIssue(1)}
	health := &domain.RepoHealth{
		Stars:                777,
		Description:          "一个终端小工具",
		DaysSinceUpdate:      3,
		HasContributingGuide: true,
		IsHealthy:            true,
	}

	f.searchCache.On("GetSearchResults", mock.Anything, mock.Anything, mock.Anything).Return(issues, true)
	f.scouter.On("CheckRepoHealth", mock.Anything, "owner/repo").Return(health, nil).Once()
	f.analysCache.On("Get", mock.Anything).Return(nil, false)
	f.analysCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.labels.On("DifficultyHint", mock.Anything, mock.Anything).Return(domain.DifficultyUnknown, false)
	f.history.On("RecordView", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var starsAtAppraisal int
	f.appraiser.On("Appraise", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			starsAtAppraisal = args.Get(1).(*domain.Issue).RepoStars
		}).
		Return(validAnalysis(), nil)

	results, err := f.finder.FindIssues(context.Background(), testPrefs(), FindOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	// AI 鉴定发生时快照已经补全，prompt 里是真实 star 数
	assert.Equal(t, 777, starsAtAppraisal)
	assert.Equal(t, 777, results[0].Issue.RepoStars)
	assert.Equal(t, "一个终端小工具", results[0].Issue.RepoDescription)
}

func TestFindIssuesLimit(t *testing.T) {
	f := newFinderFixture(t)

	issues := []*domain.Issue{testIssue(1), testIssue(2), testIssue(3)}

	f.searchCache.On("GetSearchResults", mock.Anything, mock.Anything, mock.Anything).Return(issues, true)
	f.stubAnalysisPath()
	f.scouter.On("CheckRepoHealth", mock.Anything, mock.Anything).Return(nil, errors.New("skip"))
	f.history.On("RecordView", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	results, err := f.finder.FindIssues(context.Background(), testPrefs(), FindOptions{Limit: 2})

	require.NoError(t, err)
	assert.Len(t, results, 2)

	// 只有展示出来的 2 条计入浏览历史
	f.history.AssertNumberOfCalls(t, "RecordView", 2)
}
