// internal/medium/clean.go
package medium

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Medium page furniture that is not part of the story.
const chromeSelector = "header, footer, aside, " +
	"div[class*='js-postShareWidget'], div[class*='clapButton'], div[class*='pw-post-meta'], " +
	"div[data-testid='socialStats'], div[data-testid='postActionsBar']"

func removeChrome(article *goquery.Selection) {
	article.Find(chromeSelector).Remove()
}

// rewriteCodeBlocks normalizes every <pre> to <pre><code class="language-X">
// holding plain text, so it converts to a fenced block. Medium renders line
// breaks inside code as <br>.
func rewriteCodeBlocks(article *goquery.Selection) {
	article.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		lang := ""
		pre.Find("code").AddSelection(pre).Each(func(_ int, s *goquery.Selection) {
			class, _ := s.Attr("class")
			for _, c := range strings.Fields(class) {
				if l, ok := strings.CutPrefix(c, "language-"); ok && lang == "" {
					lang = l
				}
			}
		})
		pre.Find("br").ReplaceWithHtml("\n")
		code := strings.Trim(pre.Text(), "\n")

		open := "<pre><code>"
		if lang != "" {
			open = `<pre><code class="language-` + html.EscapeString(lang) + `">`
		}
		pre.ReplaceWithHtml(open + html.EscapeString(code) + "</code></pre>")
	})
}

var (
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
	dashSeparators  = regexp.MustCompile(`\n\s*—+\s*\n`)
	bareMediumDate  = regexp.MustCompile(`^[A-Z][a-z]{2} \d{1,2}, \d{4}$`)
	bareNumber      = regexp.MustCompile(`^\d+$`)
	decorationLines = map[string]bool{"·": true, "--": true, "Listen": true, "Share": true}
)

// cleanMarkdown tidies converted markdown and drops the byline block Medium
// puts before the story: tag links, title and subtitle echoes, author links,
// read time and share widgets. Dropping stops at the first real line.
func cleanMarkdown(md string, meta Metadata) string {
	md = excessNewlines.ReplaceAllString(md, "\n\n")
	md = dashSeparators.ReplaceAllString(md, "\n\n")

	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	skipping := true
	for _, line := range lines {
		if !skipping {
			out = append(out, line)
			continue
		}
		if isBylineLine(line, meta) {
			continue
		}
		s := strings.TrimSpace(line)
		if s != "" && !isDecoration(s) {
			skipping = false
			out = append(out, line)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func isBylineLine(line string, meta Metadata) bool {
	s := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(s, "[") && (strings.Contains(line, "tagged") || strings.Contains(line, "towardsdatascience.com")):
		return true
	case s != "" && onlyRules(s):
		return true
	case meta.Title != "" && strings.Contains(line, meta.Title):
		return true
	case meta.Description != "" && strings.Contains(line, meta.Description):
		return true
	case strings.Contains(line, "[!["), strings.Contains(line, "@") && strings.Contains(line, "](/"):
		return true
	case strings.Contains(s, "min read"), strings.Contains(s, "Listen"), strings.Contains(s, "Share"), s == "·":
		return true
	case bareMediumDate.MatchString(s), s == "--", bareNumber.MatchString(s):
		return true
	}
	return false
}

func isDecoration(s string) bool {
	return strings.HasPrefix(s, "[") ||
		onlyRules(s) ||
		strings.Contains(s, "min read") ||
		decorationLines[s] ||
		bareNumber.MatchString(s)
}

func onlyRules(s string) bool {
	return strings.Trim(s, "-=") == ""
}
