// internal/web/render.go
//
// Minimal template rendering for the entity surface.
//
// Context
//   The detail block, listing, and admin form are small, fixed templates
//   compiled on first use and kept in an LRU cache.  Rendering goes
//   through a buffer so a template error yields a clean 500 instead of a
//   half-written page.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.

package web

import (
	"bytes"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/vgsr/entity/internal/cache"
)

var tmplCache = cache.New(16)

var funcs = template.FuncMap{
	// safe marks a value as pre-escaped markup (phone links).
	"safe": func(s string) template.HTML { return template.HTML(s) },
}

// render compiles (or reuses) the named template and writes it out.
func render(w http.ResponseWriter, name, text string, data any) {
	var tmpl *template.Template

	if v, ok := tmplCache.Get(name); ok {
		tmpl = v.(*template.Template)
	} else {
		t, err := template.New(name).Funcs(funcs).Parse(text)
		if err != nil {
			zap.S().Errorw("template parse failed", "name", name, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		tmplCache.Add(name, t)
		tmpl = t
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		zap.S().Errorw("template execute failed", "name", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

const detailTmpl = `<!doctype html>
<html>
<head><title>{{.Title}}</title><link rel="canonical" href="{{.Canonical}}"></head>
<body>
<h1>{{.Title}}</h1>
<dl class="entity-details">
{{range .Entries}}  <dt>{{.Label}}</dt>
  <dd>{{if .HTML}}{{safe .Value}}{{else}}{{.Value}}{{end}}</dd>
{{end}}</dl>
</body>
</html>
`

const listTmpl = `<!doctype html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<ul class="entity-list">
{{range .Items}}  <li><a href="{{.Path}}">{{.Title}}</a></li>
{{end}}</ul>
</body>
</html>
`

const editTmpl = `<!doctype html>
<html>
<head><title>Edit {{.Title}}</title></head>
<body>
<h1>Edit {{.Title}}</h1>
{{range .Messages}}<p class="error">{{safe .}}</p>
{{end}}<form method="post" action="{{.Action}}">
  <label>Title
    <input type="text" name="title" value="{{.Title}}">
  </label><br>
{{range .Entries}}  <label>{{.Label}}
    <input type="text" name="{{.Key}}" value="{{.Value}}">
  </label><br>
{{end}}  <label>Status
    <select name="status">
      <option value="draft"{{if eq .Status "draft"}} selected{{end}}>Draft</option>
      <option value="published"{{if eq .Status "published"}} selected{{end}}>Published</option>
      <option value="archived"{{if eq .Status "archived"}} selected{{end}}>Archived</option>
    </select>
  </label><br>
  <button type="submit">Save</button>
</form>
</body>
</html>
`
