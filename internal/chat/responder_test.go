package chat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/site"
)

type stubLinks struct{}

func (stubLinks) WhatsAppURL(text string) string {
	return "wa:" + text
}

func newDefaultResponder(testingT *testing.T) *Responder {
	testingT.Helper()
	content, loadErr := site.DefaultContent()
	require.NoError(testingT, loadErr)
	return NewContentResponder(content)
}

func TestReplyMatchesKeywordsIgnoringCaseAndAccents(testingT *testing.T) {
	responder := newDefaultResponder(testingT)

	testCases := []struct {
		name            string
		message         string
		expectedMessage string
	}{
		{name: "accented keyword", message: "Vous faites des ÉTUDES de faisabilité ?", expectedMessage: "études de faisabilité"},
		{name: "plural", message: "je cherche des alevins de tilapia", expectedMessage: "alevins"},
		{name: "punctuation", message: "Quel est votre numéro de téléphone?", expectedMessage: "+228 79 68 79 66"},
		{name: "multi word keyword", message: "un système hors-sol", expectedMessage: "hors-sol"},
	}
	for _, testCase := range testCases {
		testingT.Run(testCase.name, func(testingT *testing.T) {
			reply := responder.Reply(testCase.message)
			require.True(testingT, reply.Matched)
			require.Contains(testingT, reply.Text, testCase.expectedMessage)
			require.Contains(testingT, reply.WhatsAppURL, "https://wa.me/22879687966?text=")
		})
	}
}

func TestReplyPrefersEarlierRules(testingT *testing.T) {
	responder := newDefaultResponder(testingT)

	reply := responder.Reply("Bonjour, quel est le prix d'une formation ?")
	require.True(testingT, reply.Matched)
	require.Contains(testingT, reply.Text, "tarifs")
}

func TestReplyFallsBackToWhatsApp(testingT *testing.T) {
	responder := NewResponder(stubLinks{}, []Rule{{Keywords: []string{"cage"}, Reply: "cages"}}, "")

	reply := responder.Reply("Avez-vous un bureau à Kara ?")
	require.False(testingT, reply.Matched)
	require.Equal(testingT, defaultFallbackReply, reply.Text)
	require.Equal(testingT, "wa:Avez-vous un bureau à Kara ?", reply.WhatsAppURL)

	require.False(testingT, responder.Reply("encagement").Matched)
	require.True(testingT, responder.Reply("nos CAGES flottantes").Matched)

	emptyReply := responder.Reply("   ")
	require.False(testingT, emptyReply.Matched)
	require.Equal(testingT, defaultFallbackReply, emptyReply.Text)
}

func TestNewResponderSkipsEmptyRules(testingT *testing.T) {
	responder := NewResponder(nil, []Rule{
		{Keywords: []string{"  "}, Reply: "blank keyword"},
		{Keywords: []string{"bassin"}, Reply: " "},
	}, "Écrivez-nous.")

	reply := responder.Reply("bassin")
	require.False(testingT, reply.Matched)
	require.Equal(testingT, "Écrivez-nous.", reply.Text)
	require.Empty(testingT, reply.WhatsAppURL)
}
