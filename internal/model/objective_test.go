package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectiveLookup(testingT *testing.T) {
	require.True(testingT, IsKnownObjective(ObjectiveTraining))
	require.True(testingT, IsKnownObjective("  alevins "))
	require.False(testingT, IsKnownObjective("aquarium"))
	require.False(testingT, IsKnownObjective(""))

	require.Equal(testingT, "Formation", ObjectiveLabel("formation"))
	require.Equal(testingT, "Écloserie", ObjectiveLabel(ObjectiveHatchery))
	require.Equal(testingT, "aquarium", ObjectiveLabel(" aquarium "))
}

func TestObjectivesReturnsIndependentCopy(testingT *testing.T) {
	first := Objectives()
	require.Len(testingT, first, 9)
	require.Equal(testingT, ObjectiveProject, first[0].Value)
	require.Equal(testingT, ObjectiveOther, first[len(first)-1].Value)

	first[0].Label = "mutated"
	require.Equal(testingT, "Demande de projet", Objectives()[0].Label)
}

func TestIsKnownNotificationStatus(testingT *testing.T) {
	for _, status := range []string{NotificationStatusPending, NotificationStatusDelivered, NotificationStatusPartial, NotificationStatusFailed} {
		require.True(testingT, IsKnownNotificationStatus(status), status)
	}
	require.False(testingT, IsKnownNotificationStatus("sent"))
}
