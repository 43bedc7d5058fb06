package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownBasics(t *testing.T) {
	out := string(RenderMarkdown("**bold** and *italic*"))

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<em>italic</em>")
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	out := string(RenderMarkdown("hello <script>alert(1)</script> world"))

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "alert(1)")
	assert.Contains(t, out, "hello")
}

func TestRenderMarkdownLinksOpenInNewTab(t *testing.T) {
	out := string(RenderMarkdown("[site](https://example.com)"))

	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "noreferrer")
}

func TestRenderMarkdownStripsEventHandlers(t *testing.T) {
	out := string(RenderMarkdown(`<img src="x" onerror="alert(1)">`))

	assert.NotContains(t, out, "onerror")
}
