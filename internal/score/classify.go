package score

import (
	"strings"

	"github.com/eprogressing/race-radar/internal/feed"
)

// Keyword tables per canonical category. Matching is plain substring over
// the lowercased record text, the way the upstream sites word their
// announcements.
var categoryKeywords = map[string][]string{
	feed.CategoryProgramming: {
		"icpc", "acm", "ccpc", "程序设计", "蓝桥杯", "codeforces", "atcoder",
		"操作系统", "编译", "nscscc", "龙芯杯", "编程", "算法", "hackathon", "leetcode",
	},
	feed.CategoryMathModeling: {
		"数学建模", "建模", "mcm", "icm", "美赛", "国赛", "华为杯", "统计建模",
		"cumcm", "comap", "mathorcup",
	},
	feed.CategoryAIData: {
		"算法", "数据", "ai", "人工智能", "机器学习", "深度学习", "aiops", "天池",
		"kaggle", "drivendata", "大模型", "cv", "nlp", "llm",
	},
	feed.CategoryInnovation: {
		"挑战杯", "互联网+", "创新创业", "创业", "商业计划书", "路演", "独角兽",
		"创青春", "business plan",
	},
}

// Attribute tags keyed by the keyword that triggers them, in emit order.
var attributeTags = []struct {
	keywords []string
	tag      string
}{
	{[]string{"高校", "大学"}, "高校"},
	{[]string{"团队"}, "团队赛"},
	{[]string{"本科"}, "本科生"},
	{[]string{"研究生"}, "研究生"},
	{[]string{"开源"}, "开源"},
	{[]string{"证书"}, "证书"},
}

// Classifier assigns canonical categories and attribute tags to records.
type Classifier struct {
	wl *Whitelist
}

// NewClassifier creates a classifier backed by the whitelist rules.
func NewClassifier(wl *Whitelist) *Classifier {
	return &Classifier{wl: wl}
}

// Classify rewrites the record category to the canonical label derived from
// its text, keeping the adapter hint only when no keyword matches, and
// extends the tags with level and attribute tags.
func (c *Classifier) Classify(rec *feed.CompetitionRecord) {
	text := searchText(rec)

	if cat, ok := classifyText(text); ok {
		rec.Category = []string{cat}
	}

	have := make(map[string]bool, len(rec.Tags))
	for _, t := range rec.Tags {
		have[t] = true
	}
	add := func(tag string) {
		if !have[tag] {
			rec.Tags = append(rec.Tags, tag)
			have[tag] = true
		}
	}

	if rule, ok := c.wl.Match(rec); ok {
		switch rule.Level {
		case LevelNational:
			add("国家级")
		case LevelInternational:
			add("国际级")
		}
	}

	for _, at := range attributeTags {
		for _, k := range at.keywords {
			if strings.Contains(text, k) {
				add(at.tag)
				break
			}
		}
	}

	if rec.BonusAmount > 0 {
		add("有奖金")
	}
}

// classifyText picks the highest-priority canonical category whose keywords
// appear in text.
func classifyText(text string) (string, bool) {
	for _, cat := range feed.Categories {
		for _, k := range categoryKeywords[cat] {
			if strings.Contains(text, k) {
				return cat, true
			}
		}
	}
	return "", false
}
