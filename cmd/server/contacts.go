package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/storage"
)

const (
	contactsCommandUseName          = "contacts"
	contactsCommandShortDescription = "List stored contact requests"
	flagNameContactsStatus          = "status"
	flagNameContactsLimit           = "limit"
	flagUsageContactsStatus         = "only list requests with this notification status (pending, delivered, partial, failed)"
	flagUsageContactsLimit          = "maximum number of requests to list"
	defaultContactsLimit            = 50
	contactLineFormat               = "%s\t%s\t%s\t%s <%s>\t%s\n"
	noContactRequestsMessage        = "no contact requests"
)

func (application *ServerApplication) contactsCommand() *cobra.Command {
	contactsCommand := &cobra.Command{
		Use:   contactsCommandUseName,
		Short: contactsCommandShortDescription,
		Args:  cobra.NoArgs,
		RunE:  application.runContactsCommand,
	}
	contactsCommand.Flags().String(flagNameContactsStatus, "", flagUsageContactsStatus)
	contactsCommand.Flags().Int(flagNameContactsLimit, defaultContactsLimit, flagUsageContactsLimit)
	return contactsCommand
}

func (application *ServerApplication) runContactsCommand(command *cobra.Command, arguments []string) error {
	status, _ := command.Flags().GetString(flagNameContactsStatus)
	limit, _ := command.Flags().GetInt(flagNameContactsLimit)
	status = strings.ToLower(strings.TrimSpace(status))

	dataSourceName := strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDataSource))
	if dataSourceName == "" {
		return fmt.Errorf("%s: %s", missingConfigurationMessage, flagNameDatabaseDataSourceName)
	}

	database, databaseErr := application.openMigratedDatabase(application.configurationLoader.GetString(environmentKeyDatabaseDriver), dataSourceName)
	if databaseErr != nil {
		return databaseErr
	}

	store := storage.NewContactRequestStore(database)
	requests, listErr := store.ListContactRequests(command.Context(), storage.ContactRequestListFilter{Status: status, Limit: limit})
	if listErr != nil {
		return listErr
	}

	output := command.OutOrStdout()
	if len(requests) == 0 {
		_, writeErr := fmt.Fprintln(output, noContactRequestsMessage)
		return writeErr
	}
	for _, request := range requests {
		if _, writeErr := fmt.Fprintf(output, contactLineFormat, request.ID, request.SubmittedAt.UTC().Format(time.RFC3339), request.NotificationStatus, request.Name, request.Email, contactSummary(request)); writeErr != nil {
			return writeErr
		}
	}
	return nil
}

func contactSummary(request model.ContactRequest) string {
	if request.Objective == "" {
		return request.Subject
	}
	return fmt.Sprintf("[%s] %s", model.ObjectiveLabel(request.Objective), request.Subject)
}
