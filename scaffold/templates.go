package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"unicode"
	"unicode/utf8"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"lowerFirst": lowerFirst,
}).ParseFS(templateFS, "templates/*.tmpl"))

// templateData is what every template renders from
type templateData struct {
	Name  string
	AppID string
}

func render(name string, data templateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func extension(ts bool) string {
	if ts {
		return "ts"
	}
	return "js"
}

