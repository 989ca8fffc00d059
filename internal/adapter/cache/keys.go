package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github-issue-scout/internal/domain"
)

// 缓存 key 的构造是纯函数：相同输入永远产出相同 key，这是整个缓存正确性的根基

// AnalysisKey 为一次 LLM 分析生成缓存 key
//
// 关键点一：key 里掺入了 issue 的 updated_at —— issue 一旦被编辑，时间戳变了，
// key 就变了，旧的分析结果自然失效，不需要任何显式的失效调用
//
// 关键点二：key 里掺入了用户画像（技能 + 时间预算）—— 同一条 issue，
// 对 beginner/quick_win 和对 advanced/deep_dive 的鉴定结论（比如推荐语）是不同的，
// 不能串缓存
func AnalysisKey(repoName string, issueID int, updatedAt time.Time, skill domain.Difficulty, budget domain.TimeBudget) string {
	updated := "unknown"
	if !updatedAt.IsZero() {
		updated = updatedAt.UTC().Format(time.RFC3339Nano)
	}

	data := fmt.Sprintf("llm:%s:%d:%s:%s:%s", repoName, issueID, updated, skill, budget)
	return digest(data)
}

// SearchKey 为一次 GitHub 搜索生成缓存 key
func SearchKey(topic, language string, difficulty domain.Difficulty) string {
	data := fmt.Sprintf("github_search:%s:%s:%s",
		strings.ToLower(topic),
		strings.ToLower(language),
		difficulty,
	)
	return digest(data)
}

// digest 哈希成定长的不透明字符串，从 key 本身恢复不出任何语义
func digest(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
