package repository

import (
	"fmt"
	"path/filepath"
	"time"

	"github-issue-scout/internal/common"
	"github-issue-scout/internal/domain"
)

const sessionFile = "last_run.json"

// LastRun 最近一次搜寻的完整结果快照
// find 命令每次覆盖写入，favorites add 用编号引用里面的条目
type LastRun struct {
	RanAt       time.Time             `json:"ran_at"`
	Preferences domain.Preferences    `json:"preferences"`
	Results     []*domain.ScoredIssue `json:"results"`
}

// SessionStore 最近一次运行结果的存取
type SessionStore struct {
	path    string
	nowFunc func() time.Time
}

// NewSessionStore 创建会话存储
func NewSessionStore(dataDir string) *SessionStore {
	return &SessionStore{
		path:    filepath.Join(dataDir, sessionFile),
		nowFunc: time.Now,
	}
}

// Save 覆盖保存本次结果
func (s *SessionStore) Save(prefs domain.Preferences, results []*domain.ScoredIssue) error {
	run := LastRun{
		RanAt:       s.nowFunc(),
		Preferences: prefs,
		Results:     results,
	}
	return saveJSONFile(s.path, &run)
}

// Load 读取最近一次结果，从没运行过 find 时报错
func (s *SessionStore) Load() (*LastRun, error) {
	var run LastRun
	if err := loadJSONFile(s.path, &run); err != nil {
		return nil, err
	}
	if len(run.Results) == 0 {
		return nil, common.NewError(common.ErrCodeNotFound, "还没有搜寻结果，先运行 find 命令")
	}
	return &run, nil
}

// Get 按展示编号（从1数起）取单条结果
func (s *SessionStore) Get(rank int) (*domain.ScoredIssue, error) {
	run, err := s.Load()
	if err != nil {
		return nil, err
	}
	if rank < 1 || rank > len(run.Results) {
		return nil, common.NewError(common.ErrCodeInvalidInput,
			fmt.Sprintf("编号越界，最近一次结果只有 %d 条", len(run.Results)))
	}
	return run.Results[rank-1], nil
}
