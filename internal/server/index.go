package server

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/matzehuels/ghorbit/pkg/errors"
)

//go:embed index.html.tmpl
var indexTemplate string

var indexTmpl = template.Must(template.New("index").Parse(indexTemplate))

// indexData feeds the front page template. User comes from the ?user=
// query parameter so links can deep-link straight into a search.
type indexData struct {
	User string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user != "" {
		if err := errors.ValidateLogin(user); err != nil {
			user = ""
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, indexData{User: user}); err != nil {
		s.logger.Error("render index", "err", err)
	}
}
