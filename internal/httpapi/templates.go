package httpapi

import _ "embed"

//go:embed templates/site.tmpl
var siteTemplateHTML string
