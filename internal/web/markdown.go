package web

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"resource-cards/internal/card"
	"resource-cards/internal/publish"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		// Raw HTML in card text is not passed through.
		html.WithHardWraps(),
	),
)

func renderMarkdownHTML(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return template.HTML("")
	}
	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(b.String())
}

var cardPage = template.Must(template.New("card").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>body{font-family:system-ui,sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25rem .5rem}</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// handleCardHTML renders a stored card tree as a read-only HTML page.
func (s *Server) handleCardHTML(c *gin.Context) {
	p, err := s.cfg.Store.CardPayload(c.Request.Context(), c.Param("cardid"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	root, err := card.New(p)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	md, err := publish.RenderCardMarkdown(root, publish.RenderOptions{IncludeHidden: c.Query("hidden") == "1"})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", err)
		return
	}

	var buf bytes.Buffer
	title := root.Name().Get()
	if title == "" {
		title = root.ID()
	}
	if err := cardPage.Execute(&buf, map[string]any{"Title": title, "Body": renderMarkdownHTML(md)}); err != nil {
		respondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
