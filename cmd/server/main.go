package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/storage"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/task"
)

const (
	commandUseName               = "server"
	commandShortDescription      = "Run the AQUABRAIN website"
	commandLongDescription       = "Serve the AQUABRAIN website, its contact form and the contact notification dispatcher"
	missingConfigurationMessage  = "missing required configuration"
	loggerCreationErrorMessage   = "logger"
	logEventListening            = "listening"
	logFieldAddress              = "addr"
	logFieldServeMode            = "serve_mode"
	logEventSessionSecret        = "session_secret_generated"
	loggerContextOpenDatabase    = "open_db"
	loggerContextAutoMigrate     = "migrate"
	loggerContextServer          = "server"
	readHeaderTimeoutSeconds     = 5
	unexpectedArgumentsMessage   = "unexpected command arguments"
	commandInitializationFailure = "failed to configure command"
	flagNotDefinedMessage        = "flag %s not defined"
	environmentFileErrorMessage  = "failed to load environment file"
	environmentConfigurationErr  = "failed to apply environment configuration"
	generatedSessionSecretLength = 32

	flagNameEnvironmentFile  = "env-file"
	flagUsageEnvironmentFile = "optional dotenv file loaded before reading the environment"

	environmentKeyApplicationAddress        = "APP_ADDR"
	environmentKeyServeMode                 = "SERVE_MODE"
	environmentKeyDatabaseDriver            = "DB_DRIVER"
	environmentKeyDatabaseDataSource        = "DB_DSN"
	environmentKeySessionSecret             = "SESSION_SECRET"
	environmentKeySecureCookies             = "SESSION_SECURE_COOKIES"
	environmentKeyEmailProvider             = "EMAIL_PROVIDER"
	environmentKeyResendAPIKey              = "RESEND_API_KEY"
	environmentKeyPostmarkServerToken       = "POSTMARK_SERVER_TOKEN"
	environmentKeyPostmarkAccountToken      = "POSTMARK_ACCOUNT_TOKEN"
	environmentKeyContactTeamEmail          = "CONTACT_TEAM_EMAIL"
	environmentKeyContactTeamSender         = "CONTACT_TEAM_SENDER"
	environmentKeyContactConfirmationSender = "CONTACT_CONFIRMATION_SENDER"
	environmentKeyDispatchURL               = "DISPATCH_URL"
	environmentKeyDispatchToken             = "DISPATCH_TOKEN"
	environmentKeyEmailSendTimeout          = "EMAIL_SEND_TIMEOUT"
	environmentKeyPendingCheckInterval      = "PENDING_CONTACT_CHECK_INTERVAL"
	flagNameApplicationAddress              = "app-addr"
	flagNameServeMode                       = "serve-mode"
	flagNameDatabaseDriver                  = "db-driver"
	flagNameDatabaseDataSourceName          = "db-dsn"
	flagNameSessionSecret                   = "session-secret"
	flagNameSecureCookies                   = "session-secure-cookies"
	flagNameEmailProvider                   = "email-provider"
	flagNameResendAPIKey                    = "resend-api-key"
	flagNamePostmarkServerToken             = "postmark-server-token"
	flagNamePostmarkAccountToken            = "postmark-account-token"
	flagNameContactTeamEmail                = "contact-team-email"
	flagNameContactTeamSender               = "contact-team-sender"
	flagNameContactConfirmationSender       = "contact-confirmation-sender"
	flagNameDispatchURL                     = "dispatch-url"
	flagNameDispatchToken                   = "dispatch-token"
	flagNameEmailSendTimeout                = "email-send-timeout"
	flagNamePendingCheckInterval            = "pending-contact-check-interval"
	defaultApplicationAddress               = ":8080"
	defaultDatabaseDriver                   = storage.DriverNameSQLite
	defaultEmailSendTimeout                 = 15 * time.Second
	defaultPendingCheckInterval             = 10 * time.Minute
)

type optionKind int

const (
	optionKindString optionKind = iota
	optionKindBool
	optionKindDuration
)

// configurationOption ties an environment key to the flag that mirrors it.
type configurationOption struct {
	environmentKey string
	flagName       string
	usage          string
	kind           optionKind
	defaultValue   string
	persistent     bool
}

var configurationOptions = []configurationOption{
	{environmentKey: environmentKeyApplicationAddress, flagName: flagNameApplicationAddress, usage: "address for the HTTP server to listen on", defaultValue: defaultApplicationAddress},
	{environmentKey: environmentKeyServeMode, flagName: flagNameServeMode, usage: "monolith, web or dispatcher", defaultValue: string(ServeModeMonolith)},
	{environmentKey: environmentKeyDatabaseDriver, flagName: flagNameDatabaseDriver, usage: "database driver (sqlite or postgres)", defaultValue: defaultDatabaseDriver, persistent: true},
	{environmentKey: environmentKeyDatabaseDataSource, flagName: flagNameDatabaseDataSourceName, usage: "database connection string", persistent: true},
	{environmentKey: environmentKeySessionSecret, flagName: flagNameSessionSecret, usage: "secret used to sign visitor session cookies"},
	{environmentKey: environmentKeySecureCookies, flagName: flagNameSecureCookies, usage: "mark session cookies as secure", kind: optionKindBool, defaultValue: "false"},
	{environmentKey: environmentKeyEmailProvider, flagName: flagNameEmailProvider, usage: "transactional email provider (resend or postmark)"},
	{environmentKey: environmentKeyResendAPIKey, flagName: flagNameResendAPIKey, usage: "Resend API key"},
	{environmentKey: environmentKeyPostmarkServerToken, flagName: flagNamePostmarkServerToken, usage: "Postmark server token"},
	{environmentKey: environmentKeyPostmarkAccountToken, flagName: flagNamePostmarkAccountToken, usage: "Postmark account token"},
	{environmentKey: environmentKeyContactTeamEmail, flagName: flagNameContactTeamEmail, usage: "mailbox receiving contact notifications"},
	{environmentKey: environmentKeyContactTeamSender, flagName: flagNameContactTeamSender, usage: "sender of team notifications"},
	{environmentKey: environmentKeyContactConfirmationSender, flagName: flagNameContactConfirmationSender, usage: "sender of visitor confirmations"},
	{environmentKey: environmentKeyDispatchURL, flagName: flagNameDispatchURL, usage: "remote dispatcher endpoint used in web mode"},
	{environmentKey: environmentKeyDispatchToken, flagName: flagNameDispatchToken, usage: "bearer token guarding the dispatcher endpoint"},
	{environmentKey: environmentKeyEmailSendTimeout, flagName: flagNameEmailSendTimeout, usage: "timeout of one email send", kind: optionKindDuration, defaultValue: defaultEmailSendTimeout.String()},
	{environmentKey: environmentKeyPendingCheckInterval, flagName: flagNamePendingCheckInterval, usage: "how often contact requests stuck in pending are reported", kind: optionKindDuration, defaultValue: defaultPendingCheckInterval.String()},
}

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress        string
	ServeMode                 ServeMode
	DatabaseDriver            string
	DatabaseDataSourceName    string
	SessionSecret             []byte
	SecureCookies             bool
	EmailProvider             string
	ResendAPIKey              string
	PostmarkServerToken       string
	PostmarkAccountToken      string
	ContactTeamEmail          string
	ContactTeamSender         string
	ContactConfirmationSender string
	DispatchURL               string
	DispatchToken             string
	EmailSendTimeout          time.Duration
	PendingCheckInterval      time.Duration
}

// DatabaseOpener opens a database connection using the provided configuration.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
	rootCommand         *cobra.Command
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:               commandUseName,
		Short:             commandShortDescription,
		Long:              commandLongDescription,
		PersistentPreRunE: application.loadEnvironment,
		RunE:              application.runCommand,
	}
	application.rootCommand = rootCommand

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	rootCommand.AddCommand(application.contactsCommand())

	return rootCommand, nil
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	application.configurationLoader.AutomaticEnv()
	command.PersistentFlags().String(flagNameEnvironmentFile, "", flagUsageEnvironmentFile)

	for _, option := range configurationOptions {
		flagSet := application.flagSetFor(option)
		switch option.kind {
		case optionKindBool:
			flagSet.Bool(option.flagName, option.defaultValue == "true", option.usage)
		case optionKindDuration:
			defaultDuration, parseErr := time.ParseDuration(option.defaultValue)
			if parseErr != nil {
				return parseErr
			}
			flagSet.Duration(option.flagName, defaultDuration, option.usage)
		default:
			flagSet.String(option.flagName, option.defaultValue, option.usage)
		}
		application.configurationLoader.SetDefault(option.environmentKey, option.defaultValue)

		if bindErr := application.bindFlag(flagSet, option.environmentKey, option.flagName); bindErr != nil {
			return bindErr
		}
	}

	return nil
}

func (application *ServerApplication) flagSetFor(option configurationOption) *pflag.FlagSet {
	if option.persistent {
		return application.rootCommand.PersistentFlags()
	}
	return application.rootCommand.Flags()
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

// loadEnvironment reads the optional dotenv file and copies environment values into flags the command line left unset.
func (application *ServerApplication) loadEnvironment(command *cobra.Command, arguments []string) error {
	environmentFile, _ := application.rootCommand.PersistentFlags().GetString(flagNameEnvironmentFile)
	if strings.TrimSpace(environmentFile) != "" {
		if loadErr := godotenv.Load(environmentFile); loadErr != nil {
			return fmt.Errorf("%s: %w", environmentFileErrorMessage, loadErr)
		}
	}

	for _, option := range configurationOptions {
		if environmentErr := application.applyEnvironmentConfiguration(application.flagSetFor(option), option.environmentKey, option.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}
	if flag.Changed {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationErr, setErr)
	}

	return nil
}

func (application *ServerApplication) loadServerConfig() (ServerConfig, error) {
	loader := application.configurationLoader
	serveMode, serveModeErr := ParseServeMode(loader.GetString(environmentKeyServeMode))
	if serveModeErr != nil {
		return ServerConfig{}, serveModeErr
	}

	return ServerConfig{
		ApplicationAddress:        strings.TrimSpace(loader.GetString(environmentKeyApplicationAddress)),
		ServeMode:                 serveMode,
		DatabaseDriver:            strings.TrimSpace(loader.GetString(environmentKeyDatabaseDriver)),
		DatabaseDataSourceName:    strings.TrimSpace(loader.GetString(environmentKeyDatabaseDataSource)),
		SessionSecret:             []byte(strings.TrimSpace(loader.GetString(environmentKeySessionSecret))),
		SecureCookies:             loader.GetBool(environmentKeySecureCookies),
		EmailProvider:             strings.TrimSpace(loader.GetString(environmentKeyEmailProvider)),
		ResendAPIKey:              strings.TrimSpace(loader.GetString(environmentKeyResendAPIKey)),
		PostmarkServerToken:       strings.TrimSpace(loader.GetString(environmentKeyPostmarkServerToken)),
		PostmarkAccountToken:      strings.TrimSpace(loader.GetString(environmentKeyPostmarkAccountToken)),
		ContactTeamEmail:          strings.TrimSpace(loader.GetString(environmentKeyContactTeamEmail)),
		ContactTeamSender:         strings.TrimSpace(loader.GetString(environmentKeyContactTeamSender)),
		ContactConfirmationSender: strings.TrimSpace(loader.GetString(environmentKeyContactConfirmationSender)),
		DispatchURL:               strings.TrimSpace(loader.GetString(environmentKeyDispatchURL)),
		DispatchToken:             strings.TrimSpace(loader.GetString(environmentKeyDispatchToken)),
		EmailSendTimeout:          loader.GetDuration(environmentKeyEmailSendTimeout),
		PendingCheckInterval:      loader.GetDuration(environmentKeyPendingCheckInterval),
	}, nil
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig, configErr := application.loadServerConfig()
	if configErr != nil {
		return configErr
	}

	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if serverConfig.ServeMode.servesSite() && len(serverConfig.SessionSecret) == 0 {
		generatedSecret := make([]byte, generatedSessionSecretLength)
		if _, readErr := rand.Read(generatedSecret); readErr != nil {
			return readErr
		}
		serverConfig.SessionSecret = generatedSecret
		logger.Warn(logEventSessionSecret)
	}

	var database *gorm.DB
	if serverConfig.ServeMode.servesSite() {
		openedDatabase, databaseErr := application.openMigratedDatabase(serverConfig.DatabaseDriver, serverConfig.DatabaseDataSourceName)
		if databaseErr != nil {
			logger.Error(loggerContextOpenDatabase, zap.Error(databaseErr))
			return databaseErr
		}
		database = openedDatabase
	}

	router, routerErr := buildRouter(logger, serverConfig, database)
	if routerErr != nil {
		return routerErr
	}

	if database != nil {
		pendingMonitor := task.NewPendingContactMonitor(logger, storage.NewContactRequestStore(database), serverConfig.PendingCheckInterval)
		pendingScheduler := task.NewScheduler(logger, task.PendingContactJobName, serverConfig.PendingCheckInterval, pendingMonitor.Run)
		pendingScheduler.Start(command.Context())
		defer pendingScheduler.Stop()
	}

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress), zap.String(logFieldServeMode, string(serverConfig.ServeMode)))
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Error(loggerContextServer, zap.Error(serveErr))
		return serveErr
	}

	return nil
}

func (application *ServerApplication) openMigratedDatabase(driverName string, dataSourceName string) (*gorm.DB, error) {
	database, databaseErr := application.databaseOpener(storage.Config{DriverName: driverName, DataSourceName: dataSourceName})
	if databaseErr != nil {
		return nil, databaseErr
	}

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		return nil, fmt.Errorf("%s: %w", loggerContextAutoMigrate, migrateErr)
	}

	return database, nil
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.ServeMode.servesSite() && configuration.DatabaseDataSourceName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDataSourceName)
	}

	if configuration.ApplicationAddress == "" {
		missingParameters = append(missingParameters, flagNameApplicationAddress)
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func main() {
	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
