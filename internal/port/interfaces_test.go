package port_test

import (
	"testing"

	"github-issue-scout/internal/adapter/cache"
	"github-issue-scout/internal/adapter/filter"
	"github-issue-scout/internal/adapter/gemini"
	"github-issue-scout/internal/adapter/github"
	"github-issue-scout/internal/adapter/repository"
	"github-issue-scout/internal/port"
)

// 编译期断言：每个 port 接口都有对应的 adapter 实现
// 接口和实现脱节时在这里最先编译失败，而不是等到 main 里组装时才发现
var (
	_ port.Scouter       = (*github.Scouter)(nil)
	_ port.Appraiser     = (*gemini.GeminiAppraiser)(nil)
	_ port.AnalysisCache = (*cache.Store)(nil)
	_ port.Filter        = (*filter.IssueFilter)(nil)
	_ port.LabelMapper   = (*repository.LabelStore)(nil)
	_ port.Viewlog       = (*repository.HistoryStore)(nil)
)

func TestInterfaces(t *testing.T) {
	// 上面的编译期断言才是正文，这里只是让 go test 有东西可跑
}
