package httpapi

import (
	"html/template"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/site"
	"github.com/MarkoPoloResearchLab/aquabrain/pkg/footer"
)

const (
	footerElementID       = "site-footer"
	footerBaseClass       = "site-footer"
	footerInnerClass      = "container footer-grid"
	footerColumnClass     = "footer-column"
	footerHeadingClass    = "footer-heading"
	footerSocialLinkClass = "footer-social-link"
	footerBottomLineClass = "footer-bottom"
	footerNavigationTitle = "Liens rapides"
	footerContactTitle    = "Contact"
	footerCopyrightNotice = "Tous droits réservés."
)

// renderSiteFooter renders the footer for content with the given copyright year.
func renderSiteFooter(content site.Content, year int) (template.HTML, error) {
	return footer.Render(siteFooterConfig(content, year))
}

func siteFooterConfig(content site.Content, year int) footer.Config {
	navigation := make([]footer.Link, 0, len(content.Navigation))
	for _, link := range content.Navigation {
		navigation = append(navigation, footer.Link{Label: link.Label, URL: link.Href})
	}
	socialLinks := make([]footer.Link, 0, len(content.Social))
	for _, link := range content.Social {
		socialLinks = append(socialLinks, footer.Link{Label: link.Label, URL: link.Href})
	}

	var contactLines []string
	if content.Contact.Address != "" {
		contactLines = append(contactLines, content.Contact.Address)
	}
	contactLines = append(contactLines, content.Contact.Phones...)
	if content.Contact.Email != "" {
		contactLines = append(contactLines, content.Contact.Email)
	}

	copyrightHolder := content.Brand.Name
	if content.Brand.LegalSuffix != "" {
		copyrightHolder += " " + content.Brand.LegalSuffix
	}

	return footer.Config{
		ElementID:          footerElementID,
		BaseClass:          footerBaseClass,
		InnerClass:         footerInnerClass,
		ColumnClass:        footerColumnClass,
		HeadingClass:       footerHeadingClass,
		BrandName:          content.Brand.Name,
		BrandSuffix:        content.Brand.LegalSuffix,
		Summary:            content.Brand.Summary,
		NavigationTitle:    footerNavigationTitle,
		Navigation:         navigation,
		ContactTitle:       footerContactTitle,
		ContactLines:       contactLines,
		SocialLinks:        socialLinks,
		SocialLinkClass:    footerSocialLinkClass,
		CopyrightYear:      year,
		CopyrightHolder:    copyrightHolder,
		CopyrightNotice:    footerCopyrightNotice,
		BottomLineClass:    footerBottomLineClass,
		OpenSocialInNewTab: true,
	}
}
