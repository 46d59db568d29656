// ABOUTME: Halt pages: a standalone error page that ends the request
// ABOUTME: Used for missing dependencies, empty exports, and permission failures

package webadmin

import "net/http"

// User-facing halt messages
const (
	msgDependencyMissing = "WPForms Pro is not installed or active. Please install and activate WPForms Pro."
	msgDependencyNotice  = "WPForms Pro is not installed or active. Please activate WPForms Pro to use the Form Entries menu."
	msgNoEntries         = "No entries found to export."
	msgNoPermission      = "You do not have sufficient permissions to access this page."
	msgNotAllowed        = "Sorry, you are not allowed to access this page."
	msgLinkExpired       = "The link you followed has expired."
	msgExportFailed      = "Export failed."
	msgLoadFailed        = "Failed to load entries."
	msgUnknownAction     = "Unknown action."
)

type haltData struct {
	Title   string
	Message string
}

// renderHalt writes a standalone error page with the given status
func (a *Admin) renderHalt(w http.ResponseWriter, status int, message string) {
	a.render(w, status, "halt", haltData{
		Title:   http.StatusText(status),
		Message: message,
	}, "templates/halt.html")
}
