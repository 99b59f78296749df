// Package templates provides utility functions for use in n8n-backup notification templates.
// The functions format run results for the HTML email summary.
package templates

import (
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// Funcs defines a set of utility functions for use in notification templates.
var Funcs = template.FuncMap{
	"ToUpper":     strings.ToUpper,
	"ToLower":     strings.ToLower,
	"Title":       cases.Title(language.AmericanEnglish).String,
	"StatusClass": StatusClass,
}

// StatusClass maps an export status to the CSS class of its table cell.
func StatusClass(status types.Status) string {
	switch status {
	case types.StatusSuccess:
		return "success"
	case types.StatusFailed:
		return "failed"
	case types.StatusSkipped:
		return "skipped"
	default:
		return cases.Lower(language.Und).String(string(status))
	}
}
