package ui

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed docs/api.md
var apiDocs []byte

// handleDocs renders the embedded API reference as HTML
func (s *Server) handleDocs(c *gin.Context) {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(apiDocs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.Render(doc, renderer)

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>chemviz API</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #1f2937; }
code, pre { background: #f3f4f6; border-radius: 4px; padding: 2px 4px; }
pre { padding: 12px; overflow-x: auto; }
table { border-collapse: collapse; }
td, th { border: 1px solid #d1d5db; padding: 6px 10px; text-align: left; }
</style>
</head>
<body>
%s
</body>
</html>`, body)

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
