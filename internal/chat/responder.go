// Package chat answers chat widget messages with canned replies and hands the conversation over to WhatsApp.
package chat

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/site"
)

const (
	// MessageMaxLength bounds the visitor message accepted by the widget.
	MessageMaxLength = 500

	defaultFallbackReply = "Merci pour votre message ! Pour une réponse personnalisée, poursuivons la conversation sur WhatsApp avec notre équipe."
)

// LinkBuilder produces the WhatsApp deep link for a visitor message.
type LinkBuilder interface {
	WhatsAppURL(text string) string
}

// Rule answers Reply when any keyword starts a word of the visitor message.
type Rule struct {
	Keywords []string
	Reply    string
}

// Reply is the widget answer.
type Reply struct {
	Text        string `json:"reply"`
	WhatsAppURL string `json:"whatsappUrl"`
	Matched     bool   `json:"matched"`
}

type compiledRule struct {
	keywords []string
	reply    string
}

// Responder matches messages against ordered rules. It holds no conversation state.
type Responder struct {
	links    LinkBuilder
	rules    []compiledRule
	fallback string
}

// NewResponder compiles rules in order. An empty fallback uses the default WhatsApp hand-over reply.
func NewResponder(links LinkBuilder, rules []Rule, fallback string) *Responder {
	compiledRules := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, keyword := range rule.Keywords {
			if normalizedKeyword := normalizeText(keyword); normalizedKeyword != "" {
				keywords = append(keywords, normalizedKeyword)
			}
		}
		if len(keywords) == 0 || strings.TrimSpace(rule.Reply) == "" {
			continue
		}
		compiledRules = append(compiledRules, compiledRule{keywords: keywords, reply: rule.Reply})
	}
	if strings.TrimSpace(fallback) == "" {
		fallback = defaultFallbackReply
	}
	return &Responder{links: links, rules: compiledRules, fallback: fallback}
}

// NewContentResponder builds a responder with DefaultRules for content.
func NewContentResponder(content site.Content) *Responder {
	return NewResponder(content, DefaultRules(content), "")
}

// Reply answers message with the first matching rule, or the fallback.
func (responder *Responder) Reply(message string) Reply {
	reply := Reply{Text: responder.fallback}
	if responder.links != nil {
		reply.WhatsAppURL = responder.links.WhatsAppURL(message)
	}

	normalizedMessage := normalizeText(message)
	if normalizedMessage == "" {
		return reply
	}
	paddedMessage := " " + normalizedMessage
	for _, rule := range responder.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(paddedMessage, " "+keyword) {
				reply.Text = rule.reply
				reply.Matched = true
				return reply
			}
		}
	}
	return reply
}

// DefaultRules returns the AQUABRAIN canned replies. Specific topics come before greetings.
func DefaultRules(content site.Content) []Rule {
	contactLine := fmt.Sprintf("Vous pouvez nous joindre au %s", strings.Join(content.Contact.Phones, " ou au "))
	if content.Contact.Email != "" {
		contactLine += fmt.Sprintf(", par email à %s", content.Contact.Email)
	}
	if content.Contact.Address != "" {
		contactLine += fmt.Sprintf(". Nous sommes basés à %s", content.Contact.Address)
	}
	contactLine += "."

	return []Rule{
		{
			Keywords: []string{"prix", "tarif", "cout", "devis", "budget"},
			Reply:    "Nos tarifs dépendent de la nature et de la taille de votre projet. Décrivez-le-nous via le formulaire de contact ou sur WhatsApp pour recevoir un devis.",
		},
		{
			Keywords: []string{"formation", "former", "apprendre", "stage"},
			Reply:    "Nous proposons des formations pratiques et théoriques pour pisciculteurs, techniciens, jeunes entrepreneurs et organisations. Indiquez-nous votre niveau et vos besoins.",
		},
		{
			Keywords: []string{"alevin", "ecloserie", "juvenile"},
			Reply:    "Nous accompagnons la production et la fourniture d'alevins ainsi que la mise en place d'écloseries. Précisez l'espèce et la quantité souhaitées.",
		},
		{
			Keywords: []string{"etude", "faisabilite", "diagnostic", "prospection", "marche"},
			Reply:    "Nous réalisons des études de faisabilité, des diagnostics techniques, des études de marché et la prospection de sites aquacoles.",
		},
		{
			Keywords: []string{"bassin", "etang", "cage", "construction", "installation", "hors sol"},
			Reply:    "Nous concevons et réalisons bassins piscicoles, étangs, cages et systèmes hors-sol adaptés à votre site.",
		},
		{
			Keywords: []string{"audit", "suivi", "evaluation", "rentabilite"},
			Reply:    "Nous auditons les fermes aquacoles et mettons en place des systèmes de suivi-évaluation avec des recommandations d'amélioration.",
		},
		{
			Keywords: []string{"contact", "telephone", "appeler", "numero", "email", "adresse"},
			Reply:    contactLine,
		},
		{
			Keywords: []string{"bonjour", "bonsoir", "salut", "hello"},
			Reply:    fmt.Sprintf("Bonjour ! Bienvenue chez %s. Posez-moi vos questions sur nos services, nos formations ou nos alevins.", content.Brand.Name),
		},
	}
}

// normalizeText folds case and accents and reduces punctuation to single spaces.
func normalizeText(value string) string {
	accentStripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, transformErr := transform.String(accentStripper, value)
	if transformErr != nil {
		stripped = value
	}
	folded := cases.Fold().String(stripped)
	words := strings.FieldsFunc(folded, func(character rune) bool {
		return !unicode.IsLetter(character) && !unicode.IsDigit(character)
	})
	return strings.Join(words, " ")
}
