// ABOUTME: Action endpoint dispatch, modelled on WordPress admin-ajax actions
// ABOUTME: Hosts the CSV and XLSX export actions

package webadmin

import (
	"errors"
	"net/http"

	"github.com/2389/entrydesk/internal/auth"
	"github.com/2389/entrydesk/internal/report"
	"github.com/2389/entrydesk/internal/store"
)

// Action names
const (
	ActionExportCSV  = "entrydesk_export_csv"
	ActionExportXLSX = "entrydesk_export_xlsx"
)

// Action is a named endpoint reachable through /admin/ajax?action=<name>.
type Action struct {
	Name       string
	Capability auth.Capability
	Handler    http.HandlerFunc
}

// AddAction registers an action.
func (a *Admin) AddAction(act Action) {
	a.actions[act.Name] = act
}

// handleAjax authenticates the caller, checks the action's capability and the
// request nonce, then runs the action
func (a *Admin) handleAjax(w http.ResponseWriter, r *http.Request) {
	act, ok := a.actions[r.FormValue("action")]
	if !ok {
		a.renderHalt(w, http.StatusBadRequest, msgUnknownAction)
		return
	}

	id, err := a.authn.Authenticate(r)
	if err != nil || !id.Can(act.Capability) {
		a.renderHalt(w, http.StatusForbidden, msgNoPermission)
		return
	}

	// Bearer-token callers are scripts without a CSRF cookie
	if _, cookieErr := r.Cookie(SessionCookieName); cookieErr == nil && !a.validateCSRF(r) {
		a.renderHalt(w, http.StatusForbidden, msgLinkExpired)
		return
	}

	act.Handler(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
}

// exportHandler writes the entries in format to a staging file, streams it,
// and removes it
func (a *Admin) exportHandler(format report.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.FromContext(r.Context())

		file, err := a.exporter.Export(r.Context(), a.wp, filterFromRequest(r), format)
		if errors.Is(err, report.ErrNoEntries) {
			a.renderHalt(w, http.StatusNotFound, msgNoEntries)
			return
		}
		if err != nil {
			a.logger.Error("export failed", "error", err, "format", format, "user", id.Username)
			a.renderHalt(w, http.StatusInternalServerError, msgExportFailed)
			return
		}

		if err := a.exporter.Serve(w, file); err != nil {
			a.logger.Error("failed to stream export", "error", err, "file", file.Name)
			return
		}

		// Only delivered exports go in the audit trail
		if err := a.store.RecordExport(r.Context(), &store.ExportRecord{
			UserID:   id.UserID,
			Format:   store.ExportFormat(format),
			RowCount: file.Rows,
			FileName: file.Name,
		}); err != nil {
			a.logger.Error("failed to record export", "error", err)
		}

		a.logger.Info("entries exported", "user", id.Username, "format", format, "rows", file.Rows)
	}
}
