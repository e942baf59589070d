package funcs

import (
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var TemplateFuncs = template.FuncMap{
	"now":       time.Now,
	"titleCase": titleCase,
	"upper":     strings.ToUpper,
	"lower":     strings.ToLower,
	"formatDate": func(t time.Time) string {
		return t.Format("02/01/2006")
	},
}

func titleCase(s string) string {
	return cases.Title(language.French).String(s)
}
