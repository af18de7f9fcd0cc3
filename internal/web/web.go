// Package web renders the server-side HTML pages.
package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	//go:embed pages
	webPages embed.FS

	loadPages = sync.OnceValues(func() (*template.Template, error) {
		pages, err := fs.Sub(webPages, "pages")
		if err != nil {
			return nil, err
		}
		return findAndParseTemplates(pages, template.FuncMap{
			"colorClass": colorClass,
		})
	})
)

func findAndParseTemplates(rootDir fs.FS, funcMap template.FuncMap) (*template.Template, error) {
	root := template.New("")

	err := fs.WalkDir(rootDir, ".", func(p string, d fs.DirEntry, e1 error) error {
		if e1 != nil {
			return e1
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}

		fileContents, err := fs.ReadFile(rootDir, p)
		if err != nil {
			return err
		}

		_, err = root.New(p).Funcs(funcMap).Parse(string(fileContents))
		return err
	})
	return root, err
}

// colorClass maps a notification color onto a css modifier.
func colorClass(color string) string {
	switch color {
	case "red":
		return "notification--error"
	case "green":
		return "notification--success"
	default:
		return "notification--info"
	}
}

// LoadPages parses the embedded templates once and reports any parse error.
func LoadPages() error {
	_, err := loadPages()
	return err
}

// RenderPageTemplate executes the page called name and reports whether it succeeded.
func RenderPageTemplate(wr io.Writer, name string, data any) bool {
	pages, err := loadPages()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load page templates")
		return false
	}

	err = pages.ExecuteTemplate(wr, name+".html", data)
	if err != nil {
		log.Warn().Err(err).Str("name", name).Msg("Failed to render page")
	}
	return err == nil
}
