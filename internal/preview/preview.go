package preview

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/eprogressing/race-radar/internal/feed"
)

const htmlShell = `<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Race Radar</title>
<style>
body { font-family: -apple-system, "Segoe UI", "PingFang SC", sans-serif;
       max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6;
       color: #1a1a1a; }
a { color: #0b57d0; text-decoration: none; }
a:hover { text-decoration: underline; }
code { background: #f2f2f2; padding: 0.1em 0.3em; border-radius: 3px; }
hr { border: none; border-top: 1px solid #ddd; }
</style>
</head>
<body>
%s
</body>
</html>
`

// Builder renders the static digest files derived from the feed.
type Builder struct {
	topN int
}

// New creates a builder that lists at most topN items.
func New(topN int) *Builder {
	if topN <= 0 {
		topN = 20
	}
	return &Builder{topN: topN}
}

// Digest renders the feed as a markdown document.
func (b *Builder) Digest(doc *feed.FeedDocument) string {
	var sb strings.Builder

	sb.WriteString("# 竞赛雷达 Race Radar\n\n")
	fmt.Fprintf(&sb, "共 %d 项竞赛", len(doc.Items))
	if doc.UpdatedAt != "" {
		fmt.Fprintf(&sb, " · 更新于 %s", doc.UpdatedAt)
	}
	sb.WriteString("\n")

	n := b.topN
	if n > len(doc.Items) {
		n = len(doc.Items)
	}

	for i := 0; i < n; i++ {
		item := &doc.Items[i]
		fmt.Fprintf(&sb, "\n## %d. [%s](%s)\n\n", i+1, item.Title, item.SourceURL)

		var facts []string
		facts = append(facts, fmt.Sprintf("评分 %.0f", item.QualityScore))
		facts = append(facts, statusLabel(item.Status))
		if item.Deadline != "" {
			facts = append(facts, "截止 "+item.Deadline)
		}
		if len(item.Category) > 0 {
			facts = append(facts, strings.Join(item.Category, " / "))
		}
		facts = append(facts, "来源 "+item.SourceName)
		sb.WriteString(strings.Join(facts, " · "))
		sb.WriteString("\n")

		if len(item.RankReasons) > 0 {
			fmt.Fprintf(&sb, "\n`%s`\n", strings.Join(item.RankReasons, "` `"))
		}
		if item.Summary != "" {
			fmt.Fprintf(&sb, "\n%s\n", item.Summary)
		}
	}

	if len(doc.Items) > n {
		fmt.Fprintf(&sb, "\n---\n\n另有 %d 项未列出，完整列表见 feed.json。\n", len(doc.Items)-n)
	}

	return sb.String()
}

// Write renders digest.md and index.html into dir.
func (b *Builder) Write(dir string, doc *feed.FeedDocument) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating preview directory: %w", err)
	}

	digest := b.Digest(doc)
	if err := os.WriteFile(filepath.Join(dir, "digest.md"), []byte(digest), 0o644); err != nil {
		return fmt.Errorf("writing digest: %w", err)
	}

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(digest), &body); err != nil {
		return fmt.Errorf("rendering digest: %w", err)
	}
	page := fmt.Sprintf(htmlShell, body.String())
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o644); err != nil {
		return fmt.Errorf("writing preview page: %w", err)
	}
	return nil
}

func statusLabel(s feed.Status) string {
	switch s {
	case feed.StatusOngoing:
		return "进行中"
	case feed.StatusEnded:
		return "已结束"
	default:
		return "报名中"
	}
}
