// Package web отдает HTML-оболочку веб-клиента. Каждая страница
// монтирует свое представление в реестре: при переходе на другую
// страницу ресурсы предыдущего представления освобождаются.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/sl"
	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/mounts"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Имена представлений. Совпадают с именами teardown-функций в реестре.
const (
	ViewHome          = "home"
	ViewAuth          = "auth"
	ViewOCR           = "ocr"
	ViewOBD2          = "obd2"
	ViewNLP           = "nlp"
	ViewImage         = "image-recognition"
	ViewECUFlash      = "ecu-flash"
	ViewParts         = "parts-finder"
	ViewMapping       = "mapping-affiliations"
	ViewSubscriptions = "subscriptions"
	ViewFeedback      = "feedback"
)

type pageData struct {
	Title string
	View  string
	User  *models.User
}

// Handler отдает страницы оболочки.
type Handler struct {
	log      *slog.Logger
	registry *mounts.Registry
	pages    map[string]*template.Template
}

// New разбирает шаблоны страниц. Список представлений фиксирован,
// отсутствующий шаблон — ошибка старта.
func New(log *slog.Logger, registry *mounts.Registry) (*Handler, error) {
	const op = "web.New"
	views := []string{
		ViewHome, ViewAuth, ViewOCR, ViewOBD2, ViewNLP, ViewImage,
		ViewECUFlash, ViewParts, ViewMapping, ViewSubscriptions, ViewFeedback,
	}
	pages := make(map[string]*template.Template, len(views))
	for _, view := range views {
		tmpl, err := template.ParseFS(templatesFS,
			"templates/layout.tmpl",
			"templates/"+view+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		pages[view] = tmpl
	}
	return &Handler{log: log, registry: registry, pages: pages}, nil
}

// Page возвращает обработчик страницы представления. Защищенные страницы
// перенаправляют анонимную сессию на форму входа.
func (h *Handler) Page(view, title string, protected bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "web.Page"
		if protected && middlewarectx.CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, "/auth", http.StatusFound)
			return
		}

		sid := middlewarectx.SessionID(r.Context())
		h.registry.Mount(sid, view)

		data := pageData{
			Title: title,
			View:  view,
			User:  middlewarectx.CurrentUser(r.Context()),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := h.pages[view].ExecuteTemplate(w, "layout", data); err != nil {
			h.log.Error("failed to render page",
				slog.String("op", op),
				slog.String("view", view),
				sl.Err(err))
		}
	}
}

// NotFound перенаправляет неизвестный путь на главную страницу.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

// Static возвращает обработчик статических файлов оболочки.
func (h *Handler) Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// embed гарантирует наличие каталога
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
