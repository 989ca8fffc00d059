package repository

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github-issue-scout/internal/common"
	"github-issue-scout/internal/domain"
)

const favoritesFile = "favorites.json"

// FavoriteEntry 收藏夹里的一条记录：issue 快照 + 用户笔记
// 存的是收藏当时的快照，issue 后来被改了也不影响收藏夹里的样子
type FavoriteEntry struct {
	Issue      *domain.Issue    `json:"issue"`
	Analysis   *domain.Analysis `json:"analysis,omitempty"`
	TotalScore float64          `json:"total_score"`
	Notes      string           `json:"notes,omitempty"`
	AddedAt    time.Time        `json:"added_at"`
}

// FavoritesStore 收藏夹，落在单个 JSON 文件里
type FavoritesStore struct {
	path    string
	entries map[string]*FavoriteEntry // key 是 "repo#id"
	nowFunc func() time.Time
}

// NewFavoritesStore 打开收藏夹，文件不存在就是空收藏夹
func NewFavoritesStore(dataDir string) (*FavoritesStore, error) {
	store := &FavoritesStore{
		path:    filepath.Join(dataDir, favoritesFile),
		entries: make(map[string]*FavoriteEntry),
		nowFunc: time.Now,
	}
	if err := loadJSONFile(store.path, &store.entries); err != nil {
		return nil, err
	}
	return store, nil
}

// Add 收藏一条已评分的 issue。重复收藏只更新笔记，不重置收藏时间
func (s *FavoritesStore) Add(scored *domain.ScoredIssue, notes string) error {
	key := scored.Issue.Key()

	if existing, ok := s.entries[key]; ok {
		if notes != "" {
			existing.Notes = notes
		}
		return saveJSONFile(s.path, s.entries)
	}

	s.entries[key] = &FavoriteEntry{
		Issue:      scored.Issue,
		Analysis:   scored.Analysis,
		TotalScore: scored.Total,
		Notes:      notes,
		AddedAt:    s.nowFunc(),
	}
	return saveJSONFile(s.path, s.entries)
}

// Remove 取消收藏，不存在的 key 算错误（用户大概率打错了）
func (s *FavoritesStore) Remove(key string) error {
	if _, ok := s.entries[key]; !ok {
		return common.NewError(common.ErrCodeNotFound, fmt.Sprintf("收藏夹里没有 %s", key))
	}
	delete(s.entries, key)
	return saveJSONFile(s.path, s.entries)
}

// Get 查单条收藏
func (s *FavoritesStore) Get(key string) (*FavoriteEntry, bool) {
	entry, ok := s.entries[key]
	return entry, ok
}

// List 全部收藏，最近收藏的排前面
func (s *FavoritesStore) List() []*FavoriteEntry {
	list := make([]*FavoriteEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		list = append(list, entry)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].AddedAt.After(list[j].AddedAt)
	})
	return list
}

// UpdateNotes 改笔记
func (s *FavoritesStore) UpdateNotes(key, notes string) error {
	entry, ok := s.entries[key]
	if !ok {
		return common.NewError(common.ErrCodeNotFound, fmt.Sprintf("收藏夹里没有 %s", key))
	}
	entry.Notes = notes
	return saveJSONFile(s.path, s.entries)
}

// Len 收藏条数
func (s *FavoritesStore) Len() int {
	return len(s.entries)
}
