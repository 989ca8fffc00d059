package repository

import (
	"fmt"
	"path/filepath"
	"strings"

	"github-issue-scout/internal/common"
	"github-issue-scout/internal/config"
	"github-issue-scout/internal/domain"
)

const labelsFile = "labels.json"

// 标签映射：把仓库自己的标签体系翻译成统一的难度等级
//
// 三级回退，优先级从高到低：
//  1. 用户自定义映射（labels.json，用户最懂自己常逛的仓库）
//  2. 内置的知名仓库映射（大仓库的标签体系很稳定，硬编码划算）
//  3. 全局默认标签（"good first issue" 之类的通用约定）

// builtinMappings 知名仓库的标签体系
// 标签名统一小写存储，匹配时也先转小写
var builtinMappings = map[string]map[string]domain.Difficulty{
	"rust-lang/rust": {
		"e-easy":         domain.Beginner,
		"e-mentor":       domain.Beginner,
		"e-medium":       domain.Intermediate,
		"e-hard":         domain.Advanced,
		"e-needs-design": domain.Advanced,
	},
	"godotengine/godot": {
		"good first issue": domain.Beginner,
		"junior job":       domain.Beginner,
		"usability":        domain.Intermediate,
	},
	"servo/servo": {
		"e-easy":      domain.Beginner,
		"e-less-easy": domain.Intermediate,
		"e-hard":      domain.Advanced,
	},
	"neovim/neovim": {
		"good-first-issue":  domain.Beginner,
		"complexity:low":    domain.Beginner,
		"complexity:medium": domain.Intermediate,
		"complexity:high":   domain.Advanced,
	},
	"python/cpython": {
		"easy":             domain.Beginner,
		"good first issue": domain.Beginner,
	},
	"django/django": {
		"easy pickings": domain.Beginner,
	},
	"rails/rails": {
		"good-first-issue": domain.Beginner,
	},
}

// LabelStore 标签映射，实现 port.LabelMapper
// 自定义映射落在 labels.json，内置映射编译进二进制
type LabelStore struct {
	path   string
	custom map[string]map[string]domain.Difficulty // repo -> label(小写) -> difficulty
}

// NewLabelStore 打开标签映射
func NewLabelStore(dataDir string) (*LabelStore, error) {
	store := &LabelStore{
		path:   filepath.Join(dataDir, labelsFile),
		custom: make(map[string]map[string]domain.Difficulty),
	}
	if err := loadJSONFile(store.path, &store.custom); err != nil {
		return nil, err
	}
	return store, nil
}

// DifficultyHint 从标签推断难度，走三级回退
// 同一优先级里多个标签冲突时取最容易的那档（宁可推简单的，不吓退新人）
func (s *LabelStore) DifficultyHint(repoName string, labels []string) (domain.Difficulty, bool) {
	if mapping, ok := s.custom[repoName]; ok {
		if hint, ok := easiestMatch(mapping, labels); ok {
			return hint, true
		}
	}

	if mapping, ok := builtinMappings[repoName]; ok {
		if hint, ok := easiestMatch(mapping, labels); ok {
			return hint, true
		}
	}

	return globalHint(labels)
}

// HasCustom 该仓库是否有用户自定义映射
func (s *LabelStore) HasCustom(repoName string) bool {
	mapping, ok := s.custom[repoName]
	return ok && len(mapping) > 0
}

// HasBuiltin 该仓库是否有内置映射
func (s *LabelStore) HasBuiltin(repoName string) bool {
	_, ok := builtinMappings[repoName]
	return ok
}

// SetCustom 增加或覆盖一条自定义映射
func (s *LabelStore) SetCustom(repoName, label string, difficulty domain.Difficulty) error {
	if !difficulty.Known() {
		return common.NewError(common.ErrCodeInvalidInput,
			fmt.Sprintf("非法难度 %q (可选: beginner/intermediate/advanced)", string(difficulty)))
	}
	if s.custom[repoName] == nil {
		s.custom[repoName] = make(map[string]domain.Difficulty)
	}
	s.custom[repoName][strings.ToLower(label)] = difficulty
	return saveJSONFile(s.path, s.custom)
}

// RemoveCustom 删掉一个仓库的全部自定义映射
func (s *LabelStore) RemoveCustom(repoName string) error {
	if _, ok := s.custom[repoName]; !ok {
		return common.NewError(common.ErrCodeNotFound, fmt.Sprintf("没有 %s 的自定义映射", repoName))
	}
	delete(s.custom, repoName)
	return saveJSONFile(s.path, s.custom)
}

// ListCustom 全部自定义映射
func (s *LabelStore) ListCustom() map[string]map[string]domain.Difficulty {
	return s.custom
}

// Import 批量导入自定义映射，同仓库同标签以导入的为准
// 先整体校验再一次性落盘：任何一条不合法整批拒绝，不会留下导入一半的文件
func (s *LabelStore) Import(mappings map[string]map[string]domain.Difficulty) error {
	for repoName, mapping := range mappings {
		for label, difficulty := range mapping {
			if !difficulty.Known() {
				return common.NewError(common.ErrCodeInvalidInput,
					fmt.Sprintf("%s 的 %q 映射了非法难度 %q", repoName, label, string(difficulty)))
			}
		}
	}

	for repoName, mapping := range mappings {
		if s.custom[repoName] == nil {
			s.custom[repoName] = make(map[string]domain.Difficulty, len(mapping))
		}
		for label, difficulty := range mapping {
			s.custom[repoName][strings.ToLower(label)] = difficulty
		}
	}
	return saveJSONFile(s.path, s.custom)
}

// easiestMatch 在一个映射表里找标签，命中多条时取最容易的
func easiestMatch(mapping map[string]domain.Difficulty, labels []string) (domain.Difficulty, bool) {
	best := domain.DifficultyUnknown
	for _, label := range labels {
		if hint, ok := mapping[strings.ToLower(label)]; ok {
			if !best.Known() || hint.Ordinal() < best.Ordinal() {
				best = hint
			}
		}
	}
	return best, best.Known()
}

// globalHint 全局默认标签的匹配，同样取最容易的
func globalHint(labels []string) (domain.Difficulty, bool) {
	mapping := make(map[string]domain.Difficulty)
	for _, label := range config.BeginnerLabels {
		mapping[label] = domain.Beginner
	}
	for _, label := range config.IntermediateLabels {
		mapping[label] = domain.Intermediate
	}
	for _, label := range config.AdvancedLabels {
		mapping[label] = domain.Advanced
	}
	return easiestMatch(mapping, labels)
}
