package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	leadingTagPattern  = regexp.MustCompile(`(?i)^<\s*(p|div|ul|ol|li|h[1-6]|span|strong|em|b|i|u|a|table|section|article|body|html)\b[^>]*>`)
	inlineSpacePattern = regexp.MustCompile(`[ \t\f\v\r]+`)
	blankLinesPattern  = regexp.MustCompile(`\n{3,}`)
)

// HTMLCleaner reduces job descriptions pasted as HTML (e.g. copied from a
// job board's page source) to plain text
type HTMLCleaner struct {
	// Tags to remove completely, including their contents
	removeTags []string
	// Elements that end a line of text
	blockTags []string
}

// NewHTMLCleaner creates a new HTML cleaner instance
func NewHTMLCleaner() *HTMLCleaner {
	return &HTMLCleaner{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"svg", "meta", "link", "title", "base", "template",
		},
		blockTags: []string{
			"p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6",
			"tr", "section", "article", "header", "footer", "blockquote", "pre",
		},
	}
}

// LooksLikeHTML reports whether the text is an HTML fragment: it must open
// with a known element and close that same element later on. Prose that
// mentions tags, such as "wrap it in a <div>", does not match.
func (hc *HTMLCleaner) LooksLikeHTML(text string) bool {
	text = strings.TrimSpace(text)
	match := leadingTagPattern.FindStringSubmatch(text)
	if match == nil {
		return false
	}
	closing := regexp.MustCompile(`(?i)<\s*/\s*` + regexp.QuoteMeta(match[1]) + `\s*>`)
	return closing.MatchString(text[len(match[0]):])
}

// Normalize returns text unchanged unless it looks like HTML, in which case
// the markup is stripped and block structure is kept as line breaks
func (hc *HTMLCleaner) Normalize(text string) (string, error) {
	if !hc.LooksLikeHTML(text) {
		return text, nil
	}
	return hc.ToPlainText(text)
}

// ToPlainText converts an HTML fragment to plain text
func (hc *HTMLCleaner) ToPlainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range hc.removeTags {
		doc.Find(tag).Remove()
	}

	doc.Find("br").Each(func(i int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})

	doc.Find("li").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})

	doc.Find(strings.Join(hc.blockTags, ", ")).Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return hc.cleanExtractedText(doc.Text()), nil
}

// cleanExtractedText collapses whitespace while keeping paragraph breaks
func (hc *HTMLCleaner) cleanExtractedText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpacePattern.ReplaceAllString(line, " "))
	}

	text = strings.Join(lines, "\n")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
