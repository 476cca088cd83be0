package scaffold

import "github.com/liamcoop/ui5helper/internal/logger"

// CreateFormValidation writes the browser-side rule interpreter to
// webapp/validation/formValidation.{js,ts}
func (g *Generator) CreateFormValidation(ts bool) ([]FileResult, error) {
	ext := extension(ts)

	content, err := render("formValidation."+ext+".tmpl", templateData{})
	if err != nil {
		return nil, err
	}
	res, err := writeNew(g.webapp("validation", "formValidation."+ext), content)
	if err != nil {
		return nil, err
	}

	logger.Info("form validation setup", "typescript", ts, "status", res.Status)
	return []FileResult{res}, nil
}
