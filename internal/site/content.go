// Package site holds the marketing copy rendered on the single-page website.
package site

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	whatsAppBaseURL            = "https://wa.me/"
	defaultGalleryInitialCount = 8
)

var (
	// ErrMissingBrandName indicates content without a brand name.
	ErrMissingBrandName = errors.New("site: missing brand name")
	// ErrMissingHeroSlides indicates content without any hero slide.
	ErrMissingHeroSlides = errors.New("site: at least one hero slide is required")
	// ErrInvalidWhatsAppNumber indicates a WhatsApp number that is not made of digits only.
	ErrInvalidWhatsAppNumber = errors.New("site: whatsapp number must contain digits only")
)

//go:embed content.yml
var defaultContentYAML []byte

// Link is a labelled anchor.
type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Brand identifies the company.
type Brand struct {
	Name        string `yaml:"name"`
	LegalSuffix string `yaml:"legal_suffix"`
	Tagline     string `yaml:"tagline"`
	Summary     string `yaml:"summary"`
}

// HeroSlide is one frame of the hero carousel. Highlight is rendered emphasised between Title and TitleSuffix.
type HeroSlide struct {
	Title       string `yaml:"title"`
	Highlight   string `yaml:"highlight"`
	TitleSuffix string `yaml:"title_suffix"`
	Subtitle    string `yaml:"subtitle"`
	ImageURL    string `yaml:"image_url"`
	ImageAlt    string `yaml:"image_alt"`
}

type Hero struct {
	Badge           string      `yaml:"badge"`
	PrimaryAction   Link        `yaml:"primary_action"`
	SecondaryAction Link        `yaml:"secondary_action"`
	Slides          []HeroSlide `yaml:"slides"`
}

// Card is a titled paragraph with an accent colour name.
type Card struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Accent      string `yaml:"accent"`
}

// CardSection groups cards under a heading.
type CardSection struct {
	Eyebrow string `yaml:"eyebrow"`
	Title   string `yaml:"title"`
	Intro   string `yaml:"intro"`
	Cards   []Card `yaml:"cards"`
}

type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type WhyUs struct {
	Eyebrow string   `yaml:"eyebrow"`
	Title   string   `yaml:"title"`
	Intro   string   `yaml:"intro"`
	Reasons []string `yaml:"reasons"`
	Stats   []Stat   `yaml:"stats"`
}

type GalleryItem struct {
	ImageURL string `yaml:"image_url"`
	Alt      string `yaml:"alt"`
	Category string `yaml:"category"`
}

// Gallery lists photos; only InitialCount of them are shown until the visitor asks for all.
type Gallery struct {
	Eyebrow      string        `yaml:"eyebrow"`
	Title        string        `yaml:"title"`
	InitialCount int           `yaml:"initial_count"`
	Items        []GalleryItem `yaml:"items"`
}

type Testimonial struct {
	Quote  string `yaml:"quote"`
	Author string `yaml:"author"`
	Role   string `yaml:"role"`
}

// ContactInfo is displayed next to the contact form and in the footer.
type ContactInfo struct {
	Eyebrow string   `yaml:"eyebrow"`
	Title   string   `yaml:"title"`
	Intro   string   `yaml:"intro"`
	Address string   `yaml:"address"`
	Email   string   `yaml:"email"`
	Phones  []string `yaml:"phones"`
}

type WhatsApp struct {
	Number   string `yaml:"number"`
	Greeting string `yaml:"greeting"`
}

// Content is the complete copy of the website.
type Content struct {
	Brand        Brand         `yaml:"brand"`
	Navigation   []Link        `yaml:"navigation"`
	Hero         Hero          `yaml:"hero"`
	Mission      CardSection   `yaml:"mission"`
	Services     CardSection   `yaml:"services"`
	WhyUs        WhyUs         `yaml:"why_us"`
	Gallery      Gallery       `yaml:"gallery"`
	Testimonials []Testimonial `yaml:"testimonials"`
	Contact      ContactInfo   `yaml:"contact"`
	Social       []Link        `yaml:"social"`
	WhatsApp     WhatsApp      `yaml:"whatsapp"`
}

// DefaultContent returns the embedded AQUABRAIN copy.
func DefaultContent() (Content, error) {
	return LoadContent(defaultContentYAML)
}

// LoadContent parses and validates YAML content.
func LoadContent(raw []byte) (Content, error) {
	var content Content
	if decodeErr := yaml.Unmarshal(raw, &content); decodeErr != nil {
		return Content{}, fmt.Errorf("site: decode content: %w", decodeErr)
	}
	content.Brand.Name = strings.TrimSpace(content.Brand.Name)
	content.WhatsApp.Number = strings.TrimSpace(content.WhatsApp.Number)
	if content.Gallery.InitialCount <= 0 {
		content.Gallery.InitialCount = defaultGalleryInitialCount
	}
	if validationErr := content.validate(); validationErr != nil {
		return Content{}, validationErr
	}
	return content, nil
}

func (content Content) validate() error {
	if content.Brand.Name == "" {
		return ErrMissingBrandName
	}
	if len(content.Hero.Slides) == 0 {
		return ErrMissingHeroSlides
	}
	if content.WhatsApp.Number != "" && !isDigits(content.WhatsApp.Number) {
		return fmt.Errorf("%w: %q", ErrInvalidWhatsAppNumber, content.WhatsApp.Number)
	}
	return nil
}

// WhatsAppURL builds a wa.me deep link prefilled with text, or with the configured greeting when text is blank.
// It returns an empty string when no WhatsApp number is configured.
func (content Content) WhatsAppURL(text string) string {
	if content.WhatsApp.Number == "" {
		return ""
	}
	messageText := strings.TrimSpace(text)
	if messageText == "" {
		messageText = strings.TrimSpace(content.WhatsApp.Greeting)
	}
	deepLink := whatsAppBaseURL + content.WhatsApp.Number
	if messageText == "" {
		return deepLink
	}
	return deepLink + "?text=" + strings.ReplaceAll(url.QueryEscape(messageText), "+", "%20")
}

// VisibleGallery returns the gallery items to display.
func (content Content) VisibleGallery(showAll bool) []GalleryItem {
	if showAll || len(content.Gallery.Items) <= content.Gallery.InitialCount {
		return content.Gallery.Items
	}
	return content.Gallery.Items[:content.Gallery.InitialCount]
}

// HasMoreGallery reports whether some gallery items are hidden by default.
func (content Content) HasMoreGallery() bool {
	return len(content.Gallery.Items) > content.Gallery.InitialCount
}

// HiddenGalleryCount is the number of items hidden by default.
func (content Content) HiddenGalleryCount() int {
	if !content.HasMoreGallery() {
		return 0
	}
	return len(content.Gallery.Items) - content.Gallery.InitialCount
}

// PrimaryPhone returns the first listed phone number.
func (content Content) PrimaryPhone() string {
	if len(content.Contact.Phones) == 0 {
		return ""
	}
	return content.Contact.Phones[0]
}

// DialNumber reduces a displayed phone number to digits with an optional leading '+', or "" when no digit remains.
func DialNumber(display string) string {
	trimmed := strings.TrimSpace(display)
	var builder strings.Builder
	if strings.HasPrefix(trimmed, "+") {
		builder.WriteByte('+')
	}
	digitCount := 0
	for _, character := range trimmed {
		if character >= '0' && character <= '9' {
			builder.WriteRune(character)
			digitCount++
		}
	}
	if digitCount == 0 {
		return ""
	}
	return builder.String()
}

func isDigits(value string) bool {
	for _, character := range value {
		if character < '0' || character > '9' {
			return false
		}
	}
	return value != ""
}
