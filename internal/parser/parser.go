// Package parser pulls searchable metadata (title, tags) out of Markdown and
// plain text so the search index can rank documents by more than raw body.
package parser

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([\p{L}][\p{L}0-9_/-]*)`)

// Meta is the searchable metadata found in a document.
type Meta struct {
	Title string
	Tags  []string
	Body  string
}

// Parse extracts YAML frontmatter, the first H1 heading, and #tags.
// Text without frontmatter is returned unchanged as Body.
func Parse(text string) Meta {
	fm, body := splitFrontmatter(text)
	return Meta{
		Title: deriveTitle(fm, body),
		Tags:  extractTags(body, fm),
		Body:  body,
	}
}

// MergeTags returns explicit followed by any extra tags not already present.
func MergeTags(explicit, extra []string) []string {
	seen := make(map[string]struct{}, len(explicit)+len(extra))
	out := make([]string, 0, len(explicit)+len(extra))
	for _, list := range [][]string{explicit, extra} {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// splitFrontmatter separates YAML frontmatter (between leading --- lines)
// from the body. Missing or invalid frontmatter leaves the text as body.
func splitFrontmatter(text string) (map[string]any, string) {
	const delim = "---"
	trimmed := strings.TrimLeft(text, "\n\r")
	if !strings.HasPrefix(trimmed, delim) {
		return nil, text
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return nil, text
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil {
		return nil, text
	}
	body := strings.TrimLeft(rest[idx+1+len(delim):], "\n\r")
	return fm, body
}

// extractTags collects the frontmatter "tags" list and inline #tags.
func extractTags(body string, fm map[string]any) []string {
	var fromFM []string
	if list, ok := fm["tags"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				fromFM = append(fromFM, s)
			}
		}
	}

	var inline []string
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		inline = append(inline, m[1])
	}
	return MergeTags(fromFM, inline)
}

// deriveTitle returns the frontmatter title, else the first H1, else "".
func deriveTitle(fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
