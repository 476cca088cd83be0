package scaffold

import "github.com/liamcoop/ui5helper/internal/logger"

// SetupFragment writes webapp/fragment/<name>.fragment.xml holding a dialog
func (g *Generator) SetupFragment(name string) ([]FileResult, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	content, err := render("fragment.xml.tmpl", templateData{Name: name})
	if err != nil {
		return nil, err
	}
	res, err := writeNew(g.webapp("fragment", name+".fragment.xml"), content)
	if err != nil {
		return nil, err
	}

	logger.Info("fragment setup", "name", name, "status", res.Status)
	return []FileResult{res}, nil
}
