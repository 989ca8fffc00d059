package cache

import (
	"encoding/json"
	"path/filepath"

	"github-issue-scout/internal/config"
	"github-issue-scout/internal/domain"
)

// Manager 管理两个相互独立的缓存命名空间
//
//	search:   GitHub 搜索结果，TTL 短（15分钟）—— 上游 issue 变化频繁（新评论、被关闭）
//	analysis: LLM 分析结果，TTL 长（24小时）—— 输入不变，鉴定结论就不变
//
// 两个命名空间是两个独立的 Store（各占一个目录），不是 key 前缀，
// 所以跨命名空间的 key 冲突在结构上就不可能发生
type Manager struct {
	search   *Store
	analysis *Store
}

// NewManager 在 baseDir 下打开两个命名空间
func NewManager(baseDir string) (*Manager, error) {
	search, err := NewStore(filepath.Join(baseDir, "search"))
	if err != nil {
		return nil, err
	}
	analysis, err := NewStore(filepath.Join(baseDir, "analysis"))
	if err != nil {
		return nil, err
	}
	return &Manager{search: search, analysis: analysis}, nil
}

// Analysis 分析命名空间，实现 port.AnalysisCache，直接注入给编排层
func (m *Manager) Analysis() *Store { return m.analysis }

// Search 搜索命名空间
func (m *Manager) Search() *Store { return m.search }

// GetSearchResults 查搜索缓存，命中时反序列化出 issue 列表
func (m *Manager) GetSearchResults(topic, language string, difficulty domain.Difficulty) ([]*domain.Issue, bool) {
	data, ok := m.search.Get(SearchKey(topic, language, difficulty))
	if !ok {
		return nil, false
	}

	var issues []*domain.Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		// 反序列化失败说明条目坏了，当作未命中
		return nil, false
	}
	return issues, true
}

// SetSearchResults 缓存搜索结果
func (m *Manager) SetSearchResults(topic, language string, difficulty domain.Difficulty, issues []*domain.Issue) error {
	data, err := json.Marshal(issues)
	if err != nil {
		return err
	}
	return m.search.Set(SearchKey(topic, language, difficulty), data, config.SearchCacheTTL)
}

// ClearSearch 只清搜索命名空间
func (m *Manager) ClearSearch() error { return m.search.Clear() }

// ClearAnalysis 只清分析命名空间
func (m *Manager) ClearAnalysis() error { return m.analysis.Clear() }

// ClearAll 两个都清
func (m *Manager) ClearAll() error {
	if err := m.search.Clear(); err != nil {
		return err
	}
	return m.analysis.Clear()
}

// CombinedStats 两个命名空间的统计 + 磁盘总占用，给成本/遥测报告用
type CombinedStats struct {
	Search    Stats `json:"search"`
	Analysis  Stats `json:"analysis"`
	SizeBytes int64 `json:"size_bytes"`
}

// Stats 汇总统计
func (m *Manager) Stats() CombinedStats {
	return CombinedStats{
		Search:    m.search.Stats(),
		Analysis:  m.analysis.Stats(),
		SizeBytes: m.search.SizeBytes() + m.analysis.SizeBytes(),
	}
}
