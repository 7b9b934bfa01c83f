package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	overviewTemplate = "overview.html.tmpl"
	expensesTemplate = "expenses.html.tmpl"
)

// colorPattern limits inline colors to the rgba() and hex forms the series
// uses.
var colorPattern = regexp.MustCompile(`^(rgba?\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*(,\s*[0-9.]+\s*)?\)|#[0-9A-Fa-f]{3,8})$`)

// HTMLRenderer renders documents as standalone HTML pages.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the embedded templates.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	funcMap := template.FuncMap{
		"cssColor": cssColor,
	}
	tmpl, err := template.New(overviewTemplate).Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render executes the template for doc.
func (r *HTMLRenderer) Render(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, overviewTemplate, doc); err != nil {
		return nil, fmt.Errorf("failed to render overview: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderExpenses executes the expense list template.
func (r *HTMLRenderer) RenderExpenses(expenses ExpenseReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, expensesTemplate, expenses); err != nil {
		return nil, fmt.Errorf("failed to render expenses: %w", err)
	}
	return buf.Bytes(), nil
}

// cssColor marks a known-safe color as CSS. Anything else becomes grey.
func cssColor(c string) template.CSS {
	if !colorPattern.MatchString(c) {
		return template.CSS("#C8C8C8")
	}
	return template.CSS(c) //nolint:gosec // validated by colorPattern
}
