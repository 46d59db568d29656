// ABOUTME: Admin menu registry modelled on the WordPress add_menu_page API
// ABOUTME: Pages carry a title, capability, slug, icon, and position

package webadmin

import (
	"net/http"
	"sort"
	"sync"

	"github.com/2389/entrydesk/internal/auth"
)

// MenuPage is one entry in the admin menu.
type MenuPage struct {
	PageTitle  string
	MenuTitle  string
	Capability auth.Capability
	Slug       string
	Icon       string // dashicons class, e.g. "dashicons-download"
	Position   int
	Handler    http.HandlerFunc
}

// URL is where the menu entry links to.
func (p MenuPage) URL() string {
	return "/admin/page/" + p.Slug
}

// Menu holds the registered pages.
type Menu struct {
	mu    sync.RWMutex
	pages map[string]MenuPage
}

// NewMenu creates an empty menu.
func NewMenu() *Menu {
	return &Menu{pages: make(map[string]MenuPage)}
}

// Add registers p, replacing any page with the same slug.
func (m *Menu) Add(p MenuPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[p.Slug] = p
}

// Get returns the page registered under slug.
func (m *Menu) Get(slug string) (MenuPage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pages[slug]
	return p, ok
}

// Visible returns the pages id may open, ordered by position then slug.
func (m *Menu) Visible(id *auth.Identity) []MenuPage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pages []MenuPage
	for _, p := range m.pages {
		if id.Can(p.Capability) {
			pages = append(pages, p)
		}
	}

	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Position != pages[j].Position {
			return pages[i].Position < pages[j].Position
		}
		return pages[i].Slug < pages[j].Slug
	})
	return pages
}

// AddMenuPage registers a page and logs the registration.
func (a *Admin) AddMenuPage(p MenuPage) {
	a.logger.Info("adding menu item", "slug", p.Slug, "title", p.MenuTitle, "capability", p.Capability)
	a.menu.Add(p)
}

// handleMenuPage dispatches /admin/page/{slug} to the registered page after
// checking the page's capability
func (a *Admin) handleMenuPage(w http.ResponseWriter, r *http.Request) {
	p, ok := a.menu.Get(r.PathValue("slug"))
	if !ok {
		a.renderHalt(w, http.StatusNotFound, msgNotAllowed)
		return
	}

	if !auth.FromContext(r.Context()).Can(p.Capability) {
		a.renderHalt(w, http.StatusForbidden, msgNotAllowed)
		return
	}

	p.Handler(w, r)
}
