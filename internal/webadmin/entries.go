// ABOUTME: WPForms entries pages: the redirect shortcut and the entries table viewer
// ABOUTME: Also provides the notice shown while WPForms is inactive

package webadmin

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/2389/entrydesk/internal/auth"
	"github.com/2389/entrydesk/internal/report"
	"github.com/2389/entrydesk/internal/wordpress"
)

// Menu slugs
const (
	SlugEntriesRedirect = "aspire-wpforms-entries"
	SlugEntriesExport   = "wpforms-entries-export"
)

// entriesPath is the native WPForms entries screen, relative to wp-admin
const entriesPath = "admin.php?page=wpforms-entries"

func (a *Admin) registerEntriesRedirect() {
	a.AddMenuPage(MenuPage{
		PageTitle:  "Download Form Entries",
		MenuTitle:  "Download Form Entries",
		Capability: auth.CapRead,
		Slug:       SlugEntriesRedirect,
		Icon:       "dashicons-download",
		Position:   25,
		Handler:    a.handleEntriesRedirect,
	})
}

func (a *Admin) registerEntriesViewer() {
	a.AddMenuPage(MenuPage{
		PageTitle:  "Form Entries Export",
		MenuTitle:  "Form Entries Export",
		Capability: a.config.ViewerCapability,
		Slug:       SlugEntriesExport,
		Icon:       "dashicons-media-spreadsheet",
		Position:   26,
		Handler:    a.handleEntriesViewer,
	})

	a.AddAction(Action{
		Name:       ActionExportCSV,
		Capability: a.config.ExportCapability,
		Handler:    a.exportHandler(report.FormatCSV),
	})
	a.AddAction(Action{
		Name:       ActionExportXLSX,
		Capability: a.config.ExportCapability,
		Handler:    a.exportHandler(report.FormatXLSX),
	})
}

// EntriesURL returns the native WPForms entries screen URL
func (a *Admin) EntriesURL() string {
	return a.config.AdminURL + entriesPath
}

// handleEntriesRedirect sends the browser to the WPForms entries screen, or
// halts if WPForms is not active
func (a *Admin) handleEntriesRedirect(w http.ResponseWriter, r *http.Request) {
	active, err := a.wp.PluginActive(r.Context())
	if err != nil {
		a.logger.Error("failed to check WPForms status", "error", err)
	}
	if !active {
		a.renderHalt(w, http.StatusServiceUnavailable, msgDependencyMissing)
		return
	}

	http.Redirect(w, r, a.EntriesURL(), http.StatusFound)
}

// handleEntriesViewer renders all entries as a table with one column per
// distinct field name
func (a *Admin) handleEntriesViewer(w http.ResponseWriter, r *http.Request) {
	r, csrfToken := a.ensureCSRFToken(w, r)
	id := auth.FromContext(r.Context())

	filter := filterFromRequest(r)

	table, err := report.Load(r.Context(), a.wp, filter)
	if err != nil {
		a.logger.Error("failed to load entries", "error", err)
		a.renderHalt(w, http.StatusInternalServerError, msgLoadFailed)
		return
	}

	forms, err := a.wp.ListForms(r.Context())
	if err != nil {
		a.logger.Error("failed to list forms", "error", err)
	}

	a.renderEntries(w, entriesData{
		pageData:     a.page(r, "Form Entries", csrfToken),
		Table:        table,
		Forms:        forms,
		SelectedForm: filter.FormID,
		CanExport:    id.Can(a.config.ExportCapability),
		CSVURL:       actionURL(ActionExportCSV, csrfToken, filter),
		XLSXURL:      actionURL(ActionExportXLSX, csrfToken, filter),
	})
}

// dependencyNotice returns the admin notice shown while WPForms is inactive.
// A failed check shows nothing rather than a false alarm.
func (a *Admin) dependencyNotice(ctx context.Context) string {
	active, err := a.wp.PluginActive(ctx)
	if err != nil {
		a.logger.Warn("failed to check WPForms status", "error", err)
		return ""
	}
	if active {
		return ""
	}
	return msgDependencyNotice
}

func filterFromRequest(r *http.Request) wordpress.Filter {
	formID, err := strconv.ParseInt(r.FormValue("form"), 10, 64)
	if err != nil || formID < 0 {
		return wordpress.Filter{}
	}
	return wordpress.Filter{FormID: formID}
}

func actionURL(action, nonce string, filter wordpress.Filter) string {
	q := url.Values{}
	q.Set("action", action)
	q.Set("_wpnonce", nonce)
	if filter.FormID != 0 {
		q.Set("form", strconv.FormatInt(filter.FormID, 10))
	}
	return "/admin/ajax?" + q.Encode()
}
