package httpserver

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/and161185/jokes/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "random", "joke", "new", "login", "error"}

// view is the data every page template receives.
type view struct {
	User         *model.User
	JokesSection bool
	Jokes        []model.JokeListItem

	Joke    *model.Joke
	IsOwner bool

	Form       formState
	RedirectTo string
	Message    string
}

// formState echoes submitted fields back with their errors.
type formState struct {
	FormError   string
	FieldErrors map[string]string
	Fields      map[string]string
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}
