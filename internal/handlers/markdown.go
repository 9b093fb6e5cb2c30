package handlers

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdownRenderer turns stored message bodies into HTML for the admin
// transcript and the chat history API. goldmark drops raw HTML unless
// WithUnsafe is set, so the output is safe to embed.
type markdownRenderer struct {
	md goldmark.Markdown
}

func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

func (m *markdownRenderer) Render(content string) template.HTML {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(buf.String())
}
