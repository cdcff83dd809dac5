package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"
)

//go:embed templates/chart.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("chart.html").
		Funcs(template.FuncMap{
			"f":    func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
			"half": func(v int) int { return v / 2 },
		}).
		ParseFS(templateFS, "templates/chart.html"),
)

// PageData is the input to Page.
type PageData struct {
	Title     string
	Locations []string
	Selected  string
	LoadID    string
	LoadedAt  time.Time
	Layout    *Layout
}

// Page renders the interactive chart page.
func Page(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "Vaccinations by manufacturer"
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
