package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPostHTMLFromMarkdown(t *testing.T) {
	out, err := RenderPostHTML("# Hello\n\n**bold** text", "")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>bold</strong>")
}

func TestRenderPostHTMLSanitizesClientHTML(t *testing.T) {
	out, err := RenderPostHTML("ignored", `<p onclick="x()">hi</p><script>alert(1)</script>`)
	require.NoError(t, err)
	assert.Contains(t, out, "<p>hi</p>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "first second & third", PlainText("<p>first</p><div>second</div> &amp; <b>third</b>"))
}
