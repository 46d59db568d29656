// ABOUTME: Help pages rendered from embedded markdown with goldmark
// ABOUTME: Topics are the .md files under templates/help

package webadmin

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
)

const defaultHelpTopic = "entries"

var helpTopicOrder = map[string]int{
	"entries":         1,
	"exports":         2,
	"troubleshooting": 3,
}

type helpTopic struct {
	Slug   string
	Title  string
	Active bool
}

// handleHelp renders a help topic, defaulting to the entries overview
func (a *Admin) handleHelp(w http.ResponseWriter, r *http.Request) {
	r, csrfToken := a.ensureCSRFToken(w, r)
	selected := r.PathValue("topic")
	if selected == "" {
		selected = defaultHelpTopic
	}

	topics, err := listHelpTopics(selected)
	if err != nil {
		a.logger.Error("failed to list help topics", "error", err)
	}

	mdContent, err := templateFS.ReadFile(path.Join("templates/help", selected+".md"))
	if err != nil {
		a.renderHalt(w, http.StatusNotFound, "This help topic could not be found.")
		return
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert(mdContent, &htmlBuf); err != nil {
		a.logger.Error("failed to convert markdown", "error", err)
		htmlBuf.Reset()
		htmlBuf.WriteString("<p>Failed to render help content.</p>")
	}

	a.renderHelp(w, helpData{
		pageData: a.page(r, "Help", csrfToken),
		Topics:   topics,
		Topic:    selected,
		Body:     template.HTML(htmlBuf.String()),
	})
}

func listHelpTopics(selected string) ([]helpTopic, error) {
	matches, err := fs.Glob(templateFS, "templates/help/*.md")
	if err != nil {
		return nil, err
	}

	topics := make([]helpTopic, 0, len(matches))
	for _, m := range matches {
		slug := strings.TrimSuffix(path.Base(m), ".md")
		topics = append(topics, helpTopic{
			Slug:   slug,
			Title:  formatHelpTitle(slug),
			Active: slug == selected,
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		oi, okI := helpTopicOrder[topics[i].Slug]
		oj, okJ := helpTopicOrder[topics[j].Slug]
		if !okI {
			oi = 100
		}
		if !okJ {
			oj = 100
		}
		if oi != oj {
			return oi < oj
		}
		return topics[i].Slug < topics[j].Slug
	})
	return topics, nil
}

// formatHelpTitle converts a slug to a display title
func formatHelpTitle(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
