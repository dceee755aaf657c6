package model

import "strings"

const (
	ObjectiveProject          = "projet"
	ObjectiveTraining         = "formation"
	ObjectiveFarmInstallation = "installation"
	ObjectiveHatchery         = "ecloserie"
	ObjectiveFeasibilityStudy = "etude-faisabilite"
	ObjectiveTechnicalAdvice  = "conseil-technique"
	ObjectiveFingerlingSupply = "alevins"
	ObjectiveGeneralInquiry   = "information"
	ObjectiveOther            = "autre"
)

// Objective pairs the stored slug of a contact objective with its display label.
type Objective struct {
	Value string
	Label string
}

var objectives = []Objective{
	{Value: ObjectiveProject, Label: "Demande de projet"},
	{Value: ObjectiveTraining, Label: "Formation"},
	{Value: ObjectiveFarmInstallation, Label: "Installation de ferme"},
	{Value: ObjectiveHatchery, Label: "Écloserie"},
	{Value: ObjectiveFeasibilityStudy, Label: "Étude de faisabilité"},
	{Value: ObjectiveTechnicalAdvice, Label: "Conseil technique"},
	{Value: ObjectiveFingerlingSupply, Label: "Fourniture d'alevins"},
	{Value: ObjectiveGeneralInquiry, Label: "Demande d'information"},
	{Value: ObjectiveOther, Label: "Autre"},
}

// Objectives returns the closed set of objectives in display order.
func Objectives() []Objective {
	result := make([]Objective, len(objectives))
	copy(result, objectives)
	return result
}

// IsKnownObjective reports whether value belongs to the objective set.
func IsKnownObjective(value string) bool {
	normalized := strings.TrimSpace(value)
	for _, objective := range objectives {
		if objective.Value == normalized {
			return true
		}
	}
	return false
}

// ObjectiveLabel returns the display label for value, or value itself when it is not a known slug.
func ObjectiveLabel(value string) string {
	normalized := strings.TrimSpace(value)
	for _, objective := range objectives {
		if objective.Value == normalized {
			return objective.Label
		}
	}
	return normalized
}
