package content

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md = goldmark.New(goldmark.WithExtensions(extension.GFM))

	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// RenderPostHTML returns the HTML stored for a post. Client HTML wins when present,
// otherwise the markdown body is rendered. Output is always sanitized.
func RenderPostHTML(markdown, clientHTML string) (string, error) {
	source := strings.TrimSpace(clientHTML)
	if source == "" {
		var buf bytes.Buffer
		if err := md.Convert([]byte(markdown), &buf); err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
		source = buf.String()
	}
	return ugcPolicy.Sanitize(source), nil
}

// PlainText strips markup for search documents and previews.
func PlainText(htmlContent string) string {
	htmlContent = strings.ReplaceAll(htmlContent, "</p>", " ")
	htmlContent = strings.ReplaceAll(htmlContent, "<br>", " ")
	htmlContent = strings.ReplaceAll(htmlContent, "</div>", " ")

	text := html.UnescapeString(strictPolicy.Sanitize(htmlContent))
	return strings.Join(strings.Fields(text), " ")
}
