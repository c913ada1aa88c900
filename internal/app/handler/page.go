package handler

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/blob"
	"github.com/atinyakov/slugshare/internal/storage"
)

var documentPage = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Slug}}</title>
<style>
body{margin:0;font-family:sans-serif;background:#f5f5f5}
header{display:flex;justify-content:space-between;align-items:center;padding:12px 24px;background:#fff}
main{display:flex;justify-content:center;padding:24px}
img{max-width:100%;height:auto}
iframe{width:100%;height:85vh;border:0;background:#fff}
</style>
</head>
<body>
<header><h1>{{.Slug}}</h1><a href="{{.FileURL}}" download>Download</a></header>
<main>
{{if .Image}}<img src="{{.FileURL}}" alt="{{.Slug}}">{{else}}<iframe src="{{.FileURL}}" title="{{.Slug}}"></iframe>{{end}}
</main>
</body>
</html>
`))

var missingPage = template.Must(template.New("missing").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Not found</title></head>
<body>
<h1>{{if .NotFound}}Nothing is published at /{{.Slug}}{{else}}Something went wrong{{end}}</h1>
<p>{{if .NotFound}}The link may have been renamed or deleted.{{else}}Please try again later.{{end}}</p>
</body>
</html>
`))

func renderDocument(res http.ResponseWriter, logger *zap.Logger, r storage.SlugRecord) {
	res.Header().Set("Content-Type", "text/html; charset=utf-8")
	res.WriteHeader(http.StatusOK)

	err := documentPage.Execute(res, struct {
		Slug    string
		FileURL string
		Image   bool
	}{r.Slug, r.FileURL, blob.IsImage(r.FileURL)})
	if err != nil {
		logger.Error("cannot render document page", zap.String("slug", r.Slug), zap.Error(err))
	}
}

func renderMissing(res http.ResponseWriter, logger *zap.Logger, status int, slug string) {
	res.Header().Set("Content-Type", "text/html; charset=utf-8")
	res.WriteHeader(status)

	err := missingPage.Execute(res, struct {
		Slug     string
		NotFound bool
	}{slug, status == http.StatusNotFound})
	if err != nil {
		logger.Error("cannot render missing page", zap.Error(err))
	}
}
