package repository

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github-issue-scout/internal/common"
	"github-issue-scout/internal/domain"
)

const historyFile = "history.json"

// IssueStatus 浏览历史里一条 issue 的人工标注状态
type IssueStatus string

const (
	StatusViewed     IssueStatus = "viewed"     // 看过（默认）
	StatusInterested IssueStatus = "interested" // 有兴趣
	StatusAttempted  IssueStatus = "attempted"  // 动手试过
	StatusCompleted  IssueStatus = "completed"  // 做完了
	StatusAbandoned  IssueStatus = "abandoned"  // 放弃了
	StatusSkipped    IssueStatus = "skipped"    // 不感兴趣，以后别再推了
)

// ParseIssueStatus 校验状态取值
func ParseIssueStatus(s string) (IssueStatus, error) {
	switch IssueStatus(s) {
	case StatusViewed, StatusInterested, StatusAttempted, StatusCompleted, StatusAbandoned, StatusSkipped:
		return IssueStatus(s), nil
	default:
		return "", common.NewError(common.ErrCodeInvalidInput,
			fmt.Sprintf("非法状态 %q (可选: viewed/interested/attempted/completed/abandoned/skipped)", s))
	}
}

// HistoryEntry 浏览历史里的一条记录
type HistoryEntry struct {
	IssueID       int         `json:"issue_id"`
	RepoName      string      `json:"repo_name"`
	Title         string      `json:"title"`
	Difficulty    string      `json:"difficulty"`
	URL           string      `json:"url"`
	Status        IssueStatus `json:"status"`
	ViewCount     int         `json:"view_count"`
	FirstViewedAt time.Time   `json:"first_viewed_at"`
	LastViewedAt  time.Time   `json:"last_viewed_at"`
}

// HistoryStore 浏览历史，实现 port.Viewlog
// 核心用途是去重：已经看过的 issue 下次搜索不再推
type HistoryStore struct {
	path    string
	entries map[string]*HistoryEntry // key 是 "repo#id"
	nowFunc func() time.Time
}

// NewHistoryStore 打开浏览历史
func NewHistoryStore(dataDir string) (*HistoryStore, error) {
	store := &HistoryStore{
		path:    filepath.Join(dataDir, historyFile),
		entries: make(map[string]*HistoryEntry),
		nowFunc: time.Now,
	}
	if err := loadJSONFile(store.path, &store.entries); err != nil {
		return nil, err
	}
	return store, nil
}

// IsSeen 这条 issue 是否在历史里
func (s *HistoryStore) IsSeen(repoName string, issueID int) bool {
	_, ok := s.entries[domain.IssueKey(repoName, issueID)]
	return ok
}

// RecordView 记录一次浏览
// 第一次浏览建新条目；重复浏览累加次数并刷新时间，状态不动（用户标过的状态不能被覆盖）
func (s *HistoryStore) RecordView(issueID int, repoName, title, difficulty, url string) error {
	key := domain.IssueKey(repoName, issueID)
	now := s.nowFunc()

	if existing, ok := s.entries[key]; ok {
		existing.ViewCount++
		existing.LastViewedAt = now
		return saveJSONFile(s.path, s.entries)
	}

	s.entries[key] = &HistoryEntry{
		IssueID:       issueID,
		RepoName:      repoName,
		Title:         title,
		Difficulty:    difficulty,
		URL:           url,
		Status:        StatusViewed,
		ViewCount:     1,
		FirstViewedAt: now,
		LastViewedAt:  now,
	}
	return saveJSONFile(s.path, s.entries)
}

// SetStatus 给历史条目打状态标注
func (s *HistoryStore) SetStatus(key string, status IssueStatus) error {
	entry, ok := s.entries[key]
	if !ok {
		return common.NewError(common.ErrCodeNotFound, fmt.Sprintf("浏览历史里没有 %s", key))
	}
	entry.Status = status
	return saveJSONFile(s.path, s.entries)
}

// FilterUnseen 过滤掉看过的 issue，保持输入顺序
func (s *HistoryStore) FilterUnseen(issues []*domain.Issue) []*domain.Issue {
	unseen := make([]*domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if !s.IsSeen(issue.RepoName, issue.ID) {
			unseen = append(unseen, issue)
		}
	}
	return unseen
}

// List 全部历史，最近看的排前面
func (s *HistoryStore) List() []*HistoryEntry {
	list := make([]*HistoryEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		list = append(list, entry)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].LastViewedAt.After(list[j].LastViewedAt)
	})
	return list
}

// StatusCounts 各状态的条数统计
func (s *HistoryStore) StatusCounts() map[IssueStatus]int {
	counts := make(map[IssueStatus]int)
	for _, entry := range s.entries {
		counts[entry.Status]++
	}
	return counts
}

// Clear 清空全部历史
func (s *HistoryStore) Clear() error {
	s.entries = make(map[string]*HistoryEntry)
	return saveJSONFile(s.path, s.entries)
}

// Len 历史条数
func (s *HistoryStore) Len() int {
	return len(s.entries)
}
