package vendors

import "strings"

// Document is the pre-split view of the raw text that tactics work on.
// Built once per resolution; tactics never re-split.
type Document struct {
	Lines     []string
	headLower string // first HeadLines lines, joined, lowercased
	cfg       Config
}

func newDocument(text string, cfg Config) *Document {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(strings.TrimSuffix(l, "\r")); l != "" {
			lines = append(lines, l)
		}
	}
	head := lines
	if len(head) > cfg.HeadLines {
		head = head[:cfg.HeadLines]
	}
	return &Document{
		Lines:     lines,
		headLower: strings.ToLower(strings.Join(head, "\n")),
		cfg:       cfg,
	}
}

// scanWindow yields the indices of the first ScorerHeadLines and last
// ScorerTailLines lines, each line at most once.
func (d *Document) scanWindow() []int {
	n := len(d.Lines)
	seen := make(map[int]struct{}, n)
	idx := make([]int, 0, n)
	for i := 0; i < n && i < d.cfg.ScorerHeadLines; i++ {
		seen[i] = struct{}{}
		idx = append(idx, i)
	}
	for i := max(0, n-d.cfg.ScorerTailLines); i < n; i++ {
		if _, ok := seen[i]; !ok {
			idx = append(idx, i)
		}
	}
	return idx
}
