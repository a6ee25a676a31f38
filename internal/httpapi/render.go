package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/russross/blackfriday/v2"

	"llm_compare/internal/compare"
	"llm_compare/internal/middleware"
	"llm_compare/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Model output is untrusted: raw HTML is dropped and only safe link schemes
// are kept.
const markdownFlags = blackfriday.UseXHTML |
	blackfriday.SkipHTML |
	blackfriday.Safelink |
	blackfriday.NofollowLinks |
	blackfriday.NoreferrerLinks |
	blackfriday.HrefTargetBlank

type panelView struct {
	Label  string
	Body   template.HTML
	Failed bool
}

type pageData struct {
	Authorized bool
	Incorrect  bool
	Prompt     string
	Panels     []panelView
}

func (d *Dependencies) newPage(sess *session.Session) pageData {
	return pageData{
		Authorized: d.Gate.IsAuthorized(&sess.State),
		Incorrect:  d.Gate.NoticeIncorrect(&sess.State),
	}
}

func renderMarkdown(text string) template.HTML {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{Flags: markdownFlags})
	out := blackfriday.Run([]byte(text),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(renderer),
	)
	return template.HTML(out)
}

func renderPanels(panels []compare.Panel) []panelView {
	if len(panels) == 0 {
		return nil
	}
	views := make([]panelView, len(panels))
	for i, p := range panels {
		views[i] = panelView{
			Label:  p.Label,
			Body:   renderMarkdown(p.Text),
			Failed: p.Failed,
		}
	}
	return views
}

func (d *Dependencies) renderPage(w http.ResponseWriter, r *http.Request, page pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		d.Logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("failed to render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
