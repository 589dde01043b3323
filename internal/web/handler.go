package web

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/lojasmm/dmassist/internal/ai"
)

//go:embed page.html
var pageFS embed.FS

var pageTmpl = template.Must(template.ParseFS(pageFS, "page.html"))

type pageData struct {
	GenerateURL       string
	DefaultSenderName string
}

// Handler serves the single page used to draft replies. The page talks to the
// generate endpoint directly; nothing typed into it is sent back here.
type Handler struct {
	generateURL string
}

func NewHandler(generateURL string) *Handler {
	return &Handler{generateURL: generateURL}
}

func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err := pageTmpl.Execute(w, pageData{
		GenerateURL:       h.generateURL,
		DefaultSenderName: ai.DefaultSenderName,
	})
	if err != nil {
		log.Printf("web: rendering page: %v", err)
	}
}
