package footer

import (
	"bytes"
	"html/template"
)

// Link describes an anchor displayed in one of the footer columns.
type Link struct {
	Label string
	URL   string
}

// Config captures the content and style hooks required to render the footer.
type Config struct {
	ElementID          string
	BaseClass          string
	InnerClass         string
	ColumnClass        string
	HeadingClass       string
	BrandName          string
	BrandSuffix        string
	Summary            string
	NavigationTitle    string
	Navigation         []Link
	ContactTitle       string
	ContactLines       []string
	SocialLinks        []Link
	SocialLinkClass    string
	CopyrightYear      int
	CopyrightHolder    string
	CopyrightNotice    string
	BottomLineClass    string
	OpenSocialInNewTab bool
}

var (
	footerTemplate = template.Must(template.New("footer").Parse(`<footer id="{{.ElementID}}" class="{{.BaseClass}}">
  <div class="{{.InnerClass}}">
    <div class="{{.ColumnClass}}">
      <p class="{{.HeadingClass}}">{{.BrandName}}{{if .BrandSuffix}} <small>{{.BrandSuffix}}</small>{{end}}</p>
      {{- if .Summary}}
      <p>{{.Summary}}</p>
      {{- end}}
      {{- if .SocialLinks}}
      <div class="footer-social">
        {{- range .SocialLinks}}
        <a class="{{$.SocialLinkClass}}" href="{{.URL}}" aria-label="{{.Label}}"{{if $.OpenSocialInNewTab}} target="_blank" rel="noopener noreferrer"{{end}}>{{.Label}}</a>
        {{- end}}
      </div>
      {{- end}}
    </div>
    {{- if .Navigation}}
    <nav class="{{.ColumnClass}}">
      <p class="{{.HeadingClass}}">{{.NavigationTitle}}</p>
      <ul>
        {{- range .Navigation}}
        <li><a href="{{.URL}}">{{.Label}}</a></li>
        {{- end}}
      </ul>
    </nav>
    {{- end}}
    {{- if .ContactLines}}
    <div class="{{.ColumnClass}}">
      <p class="{{.HeadingClass}}">{{.ContactTitle}}</p>
      <ul>
        {{- range .ContactLines}}
        <li>{{.}}</li>
        {{- end}}
      </ul>
    </div>
    {{- end}}
  </div>
  <p class="{{.BottomLineClass}}">© {{.CopyrightYear}} {{.CopyrightHolder}}. {{.CopyrightNotice}}</p>
</footer>`))
)

// Render returns the footer HTML for the provided configuration.
func Render(config Config) (template.HTML, error) {
	var buffer bytes.Buffer
	if err := footerTemplate.Execute(&buffer, config); err != nil {
		return "", err
	}
	return template.HTML(buffer.String()), nil
}
