package main

import (
	"bytes"
	"html/template"
	"sync"
)

// The emitted page embeds the compiled graph as a script-scoped literal the
// viewer picks up on load.
const pageTemplateSrc = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="simcir.js"></script>
<link rel="stylesheet" type="text/css" href="simcir.css">
<script src="simcir-basicset.js"></script>
<link rel="stylesheet" type="text/css" href="simcir-basicset.css">
</head>
<body>
<h1>{{.Title}}</h1>
<div class="simcir">
{{.Graph}}
</div>
</body>
</html>
`

type pageData struct {
	Title string
	Graph template.JS
}

var (
	pageTemplateOnce sync.Once
	pageTemplate     *template.Template
	pageTemplateErr  error
)

func renderPage(title string, graph []byte) (string, error) {
	pageTemplateOnce.Do(func() {
		pageTemplate, pageTemplateErr = template.New("page").Parse(pageTemplateSrc)
	})
	if pageTemplateErr != nil {
		return "", pageTemplateErr
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{Title: title, Graph: template.JS(graph)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
