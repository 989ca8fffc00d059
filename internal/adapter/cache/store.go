package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github-issue-scout/internal/common"
)

const (
	storeDirPerms  = 0o700
	storeFilePerms = 0o600
)

// diskEntry 磁盘上的缓存条目：不透明的值 + 绝对过期时间
type diskEntry struct {
	Value    []byte    `json:"value"`
	Expiry   time.Time `json:"expiry"`
	CachedAt time.Time `json:"cached_at"`
}

// Stats 单个命名空间的命中统计
type Stats struct {
	Hits    int     `json:"hits"`
	Misses  int     `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Store 单个命名空间的文件缓存：一个 key 一个 JSON 文件，进程重启后数据还在
// 命中/未命中计数器是实例自己的状态，多个 Store 实例互不干扰
// 单进程假设，不加锁；多进程并发写同一目录不在保护范围内
type Store struct {
	dir    string
	memory map[string]diskEntry // 磁盘之上的快路径
	hits   int
	misses int

	nowFunc func() time.Time // 便于测试注入当前时间
}

// NewStore 打开（或创建）一个命名空间目录
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, storeDirPerms); err != nil {
		return nil, common.WrapError(common.ErrCodeCache, "创建缓存目录失败", err)
	}
	return &Store{
		dir:     dir,
		memory:  make(map[string]diskEntry),
		nowFunc: time.Now,
	}, nil
}

// Get 查缓存。每次调用必然使命中或未命中计数器之一加一
// 过期条目视同未命中，并且会把过期条目从内存和磁盘上踢掉（不是忽略）
func (s *Store) Get(key string) ([]byte, bool) {
	now := s.nowFunc()

	if entry, ok := s.memory[key]; ok {
		if now.After(entry.Expiry) {
			s.evict(key)
			s.misses++
			return nil, false
		}
		s.hits++
		return entry.Value, true
	}

	entry, ok := s.loadFromDisk(key)
	if !ok {
		s.misses++
		return nil, false
	}
	if now.After(entry.Expiry) {
		s.evict(key)
		s.misses++
		return nil, false
	}

	// 回填内存，下次就不用读盘了
	s.memory[key] = entry
	s.hits++
	return entry.Value, true
}

// Set 覆盖写入，过期时间从调用时刻重新起算
func (s *Store) Set(key string, value []byte, ttl time.Duration) error {
	entry := diskEntry{
		Value:    value,
		Expiry:   s.nowFunc().Add(ttl),
		CachedAt: s.nowFunc(),
	}

	if err := s.saveToDisk(key, entry); err != nil {
		return err
	}
	s.memory[key] = entry
	return nil
}

// Clear 清空本命名空间，绝不影响其他命名空间（目录天然隔离）
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return common.WrapError(common.ErrCodeCache, "读取缓存目录失败", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		// 正常条目是 .json；改名失败可能留下孤儿 .tmp，一并扫掉，
		// 否则 SizeBytes 会把它们一直算在磁盘占用里
		name := e.Name()
		if !strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".tmp") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return common.WrapError(common.ErrCodeCache, "删除缓存文件失败", err)
		}
	}
	s.memory = make(map[string]diskEntry)
	return nil
}

// Stats 返回命中统计
func (s *Store) Stats() Stats {
	total := s.hits + s.misses
	rate := 0.0
	if total > 0 {
		rate = float64(s.hits) / float64(total)
	}
	return Stats{Hits: s.hits, Misses: s.misses, HitRate: rate}
}

// SizeBytes 本命名空间在磁盘上占用的字节数
func (s *Store) SizeBytes() int64 {
	var total int64
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if info, err := e.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}

// fileName key 先哈希再当文件名，避免特殊字符，也让 key 长度固定
func (s *Store) fileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]) + ".json"
}

func (s *Store) loadFromDisk(key string) (diskEntry, bool) {
	var entry diskEntry
	data, err := os.ReadFile(filepath.Join(s.dir, s.fileName(key)))
	if err != nil {
		return entry, false
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		// 文件损坏就直接踢掉，当作未命中
		s.evict(key)
		return diskEntry{}, false
	}
	return entry, true
}

// saveToDisk 先写临时文件再改名，保证写入是原子的
func (s *Store) saveToDisk(key string, entry diskEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return common.WrapError(common.ErrCodeCache, "序列化缓存条目失败", err)
	}

	path := filepath.Join(s.dir, s.fileName(key))
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, storeFilePerms); err != nil {
		return common.WrapError(common.ErrCodeCache, "写入缓存文件失败", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return common.WrapError(common.ErrCodeCache, fmt.Sprintf("缓存文件改名失败: %s", path), err)
	}
	return nil
}

func (s *Store) evict(key string) {
	delete(s.memory, key)
	path := filepath.Join(s.dir, s.fileName(key))
	_ = os.Remove(path)
}
