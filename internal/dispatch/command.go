package dispatch

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/prdispatch/internal/gitrepo"
	"github.com/temirov/prdispatch/internal/githubapi"
	"github.com/temirov/prdispatch/internal/githubauth"
	"github.com/temirov/prdispatch/internal/prompt"
	"github.com/temirov/prdispatch/internal/utils/flags"
)

const (
	commandUseConstant                = "prdispatch <environment>"
	commandShortDescriptionConstant   = "Trigger a deployment workflow for one of your open pull requests"
	commandLongDescriptionConstant    = "prdispatch lists your open pull requests in the configured repository, lets you pick one together with a target environment, and triggers a workflow_dispatch run against the latest commit of its branch. Requires GITHUB_TOKEN plus GITHUB_ORG and GITHUB_REPO (or --repository); set DEPLOY_EXPERIMENTAL_WORKFLOW_ID to skip workflow selection."
	commandExampleConstant            = "prdispatch 2\nprdispatch 3 --dry-run"
	dryRunFlagNameConstant            = "dry-run"
	dryRunFlagDescriptionConstant     = "Build and print the dispatch payload without sending it"
	plainFlagNameConstant             = "plain"
	plainFlagDescriptionConstant      = "Use numbered line prompts instead of the interactive menu"
	workflowFlagNameConstant          = "workflow"
	workflowFlagDescriptionConstant   = "Workflow ID or file name to dispatch, skipping workflow selection"
	repositoryFlagNameConstant        = "repository"
	repositoryFlagDescriptionConstant = "Repository as owner/name or a GitHub remote URL, overriding GITHUB_ORG and GITHUB_REPO"
	logMessageCommandStarted          = "dispatch command started"
	logMessageCommandFinished         = "dispatch command finished"
	logFieldEnvironmentIndexConstant  = "environment_index"
	logFieldDryRunConstant            = "dry_run"
	logFieldOutcomeConstant           = "outcome"
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current dispatch configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the dispatch command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GatewayFactory        GatewayFactory
	PrompterFactory       PrompterFactory
}

// Build constructs the dispatch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.ExactArgs(1),
		RunE:    builder.run,
	}

	var dryRun, plainPrompts bool
	flags.AddToggleFlag(command.Flags(), &dryRun, dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), &plainPrompts, plainFlagNameConstant, false, plainFlagDescriptionConstant)
	command.Flags().String(workflowFlagNameConstant, "", workflowFlagDescriptionConstant)
	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration, flagError := builder.applyFlags(command, builder.resolveConfiguration())
	if flagError != nil {
		return flagError
	}

	environmentIndex, argumentError := configuration.EnvironmentCatalog().ParseArgument(arguments[0])
	if argumentError != nil {
		return argumentError
	}

	if validationError := configuration.Validate(); validationError != nil {
		return validationError
	}

	logger := builder.resolveLogger()
	logger.Debug(
		logMessageCommandStarted,
		zap.Int(logFieldEnvironmentIndexConstant, environmentIndex),
		zap.Bool(logFieldDryRunConstant, configuration.DryRun),
	)

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	gateway, gatewayError := builder.resolveGateway(executionContext, configuration)
	if gatewayError != nil {
		return gatewayError
	}

	service, serviceError := NewService(ServiceDependencies{
		Gateway:  gateway,
		Prompter: builder.resolvePrompter(command.InOrStdin(), command.OutOrStdout(), configuration.PlainPrompts),
		Logger:   logger,
		Output:   command.OutOrStdout(),
	})
	if serviceError != nil {
		return serviceError
	}

	result, runError := service.Run(executionContext, Options{
		Repository:       githubapi.Repository{Owner: configuration.Owner, Name: configuration.Repository},
		WorkflowID:       configuration.WorkflowID,
		Environments:     configuration.EnvironmentCatalog(),
		EnvironmentIndex: environmentIndex,
		DryRun:           configuration.DryRun,
	})
	if runError != nil {
		return runError
	}

	logger.Debug(logMessageCommandFinished, zap.String(logFieldOutcomeConstant, string(result.Outcome)))
	return nil
}

func (builder *CommandBuilder) applyFlags(command *cobra.Command, configuration Configuration) (Configuration, error) {
	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRun, dryRunError := command.Flags().GetBool(dryRunFlagNameConstant)
		if dryRunError != nil {
			return Configuration{}, dryRunError
		}
		configuration.DryRun = dryRun
	}

	if command.Flags().Changed(plainFlagNameConstant) {
		plain, plainError := command.Flags().GetBool(plainFlagNameConstant)
		if plainError != nil {
			return Configuration{}, plainError
		}
		configuration.PlainPrompts = plain
	}

	if command.Flags().Changed(workflowFlagNameConstant) {
		workflowID, workflowError := command.Flags().GetString(workflowFlagNameConstant)
		if workflowError != nil {
			return Configuration{}, workflowError
		}
		configuration.WorkflowID = workflowID
	}

	if command.Flags().Changed(repositoryFlagNameConstant) {
		repositoryValue, repositoryError := command.Flags().GetString(repositoryFlagNameConstant)
		if repositoryError != nil {
			return Configuration{}, repositoryError
		}
		reference, parseError := gitrepo.ParseRepositoryReference(repositoryValue)
		if parseError != nil {
			return Configuration{}, parseError
		}
		configuration.Owner = reference.Owner
		configuration.Repository = reference.Name
	}

	return configuration.Sanitize(), nil
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveGateway(executionContext context.Context, configuration Configuration) (RepositoryGateway, error) {
	if builder.GatewayFactory != nil {
		return builder.GatewayFactory(executionContext, configuration)
	}
	return NewGitHubGateway(executionContext, configuration)
}

func (builder *CommandBuilder) resolvePrompter(input io.Reader, output io.Writer, plain bool) prompt.SelectionPrompter {
	if builder.PrompterFactory != nil {
		return builder.PrompterFactory(input, output, plain)
	}
	return prompt.NewSelectionPrompter(input, output, plain)
}

// NewGitHubGateway builds the go-github backed gateway authenticated with the configured token.
func NewGitHubGateway(executionContext context.Context, configuration Configuration) (RepositoryGateway, error) {
	httpClient, httpClientError := githubauth.NewHTTPClient(executionContext, configuration.Token, nil)
	if httpClientError != nil {
		return nil, httpClientError
	}

	client, clientError := githubapi.NewClient(githubapi.ClientOptions{
		HTTPClient:        httpClient,
		BaseURL:           configuration.APIBaseURL,
		SearchResultLimit: configuration.SearchLimit,
	})
	if clientError != nil {
		return nil, clientError
	}
	return client, nil
}
