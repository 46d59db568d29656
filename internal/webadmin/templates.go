// ABOUTME: Template rendering functions for admin UI
// ABOUTME: Loads templates from embedded filesystem and renders them

package webadmin

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/2389/entrydesk/internal/auth"
	"github.com/2389/entrydesk/internal/report"
	"github.com/2389/entrydesk/internal/store"
	"github.com/2389/entrydesk/internal/wordpress"
)

// pageData is the layout data shared by every authenticated page
type pageData struct {
	Title     string
	User      *auth.Identity
	Menu      []MenuPage
	Notice    string
	CSRFToken string
}

type loginData struct {
	Title     string
	Error     string
	CSRFToken string
}

type dashboardData struct {
	pageData
	Exports []*store.ExportRecord
}

type entriesData struct {
	pageData
	Table        *report.Table
	Forms        []wordpress.Form
	SelectedForm int64
	CanExport    bool
	CSVURL       string
	XLSXURL      string
}

type helpData struct {
	pageData
	Topics []helpTopic
	Topic  string
	Body   template.HTML
}

// render executes the given templates, the first being the entry point, and
// writes the result with status. Rendering into a buffer first means a
// template error never leaves a half-written page.
func (a *Admin) render(w http.ResponseWriter, status int, name string, data any, files ...string) {
	tmpl, err := template.ParseFS(templateFS, files...)
	if err != nil {
		a.logger.Error("failed to parse template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		a.logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderLoginPage renders the login page
func (a *Admin) renderLoginPage(w http.ResponseWriter, status int, errorMsg, csrfToken string) {
	a.render(w, status, "login", loginData{
		Title:     "Log In",
		Error:     errorMsg,
		CSRFToken: csrfToken,
	}, "templates/login.html")
}

// renderDashboard renders the main dashboard
func (a *Admin) renderDashboard(w http.ResponseWriter, page pageData, exports []*store.ExportRecord) {
	a.render(w, http.StatusOK, "dashboard", dashboardData{
		pageData: page,
		Exports:  exports,
	}, "templates/base.html", "templates/dashboard.html")
}

// renderEntries renders the entries table page
func (a *Admin) renderEntries(w http.ResponseWriter, data entriesData) {
	a.render(w, http.StatusOK, "entries", data, "templates/base.html", "templates/entries.html")
}

// renderHelp renders a help topic
func (a *Admin) renderHelp(w http.ResponseWriter, data helpData) {
	a.render(w, http.StatusOK, "help", data, "templates/base.html", "templates/help.html")
}
