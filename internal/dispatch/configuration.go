package dispatch

import (
	"strings"

	"github.com/temirov/prdispatch/internal/githubauth"
)

// Environment variable names consumed by the dispatch command.
const (
	EnvGitHubToken      = githubauth.EnvGitHubToken
	EnvGitHubOrg        = "GITHUB_ORG"
	EnvGitHubRepo       = "GITHUB_REPO"
	EnvDeployWorkflowID = "DEPLOY_EXPERIMENTAL_WORKFLOW_ID"
)

const (
	tokenConfigurationKeyConstant             = "github_token"
	ownerConfigurationKeyConstant             = "github_org"
	repositoryConfigurationKeyConstant        = "github_repo"
	workflowConfigurationKeyConstant          = "workflow_id"
	apiBaseURLConfigurationKeyConstant        = "api_base_url"
	environmentPrefixConfigurationKeyConstant = "environment_prefix"
	environmentCountConfigurationKeyConstant  = "environment_count"
	searchLimitConfigurationKeyConstant       = "search_limit"
	dryRunConfigurationKeyConstant            = "dry_run"
	plainPromptsConfigurationKeyConstant      = "plain_prompts"
	configurationKeySeparatorConstant         = "."
	defaultEnvironmentPrefixConstant          = "experimental"
	defaultEnvironmentCountConstant           = 6
	defaultSearchLimitConstant                = 100
)

// Configuration captures the settings resolved before the dispatch pipeline starts.
type Configuration struct {
	Token             string `mapstructure:"github_token"`
	Owner             string `mapstructure:"github_org"`
	Repository        string `mapstructure:"github_repo"`
	WorkflowID        string `mapstructure:"workflow_id"`
	APIBaseURL        string `mapstructure:"api_base_url"`
	EnvironmentPrefix string `mapstructure:"environment_prefix"`
	EnvironmentCount  int    `mapstructure:"environment_count"`
	SearchLimit       int    `mapstructure:"search_limit"`
	DryRun            bool   `mapstructure:"dry_run"`
	PlainPrompts      bool   `mapstructure:"plain_prompts"`
}

// DefaultConfiguration provides baseline dispatch settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		EnvironmentPrefix: defaultEnvironmentPrefixConstant,
		EnvironmentCount:  defaultEnvironmentCountConstant,
		SearchLimit:       defaultSearchLimitConstant,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		configurationKey(prefix, tokenConfigurationKeyConstant):             "",
		configurationKey(prefix, ownerConfigurationKeyConstant):             "",
		configurationKey(prefix, repositoryConfigurationKeyConstant):        "",
		configurationKey(prefix, workflowConfigurationKeyConstant):          "",
		configurationKey(prefix, apiBaseURLConfigurationKeyConstant):        "",
		configurationKey(prefix, environmentPrefixConfigurationKeyConstant): defaults.EnvironmentPrefix,
		configurationKey(prefix, environmentCountConfigurationKeyConstant):  defaults.EnvironmentCount,
		configurationKey(prefix, searchLimitConfigurationKeyConstant):       defaults.SearchLimit,
		configurationKey(prefix, dryRunConfigurationKeyConstant):            defaults.DryRun,
		configurationKey(prefix, plainPromptsConfigurationKeyConstant):      defaults.PlainPrompts,
	}
}

// EnvironmentBindings maps configuration keys to the unprefixed environment variables that feed them.
func EnvironmentBindings(prefix string) map[string]string {
	return map[string]string{
		configurationKey(prefix, tokenConfigurationKeyConstant):      EnvGitHubToken,
		configurationKey(prefix, ownerConfigurationKeyConstant):      EnvGitHubOrg,
		configurationKey(prefix, repositoryConfigurationKeyConstant): EnvGitHubRepo,
		configurationKey(prefix, workflowConfigurationKeyConstant):   EnvDeployWorkflowID,
	}
}

// Sanitize trims configured values and restores defaults for unusable numbers.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Token = strings.TrimSpace(configuration.Token)
	sanitized.Owner = strings.TrimSpace(configuration.Owner)
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.WorkflowID = strings.TrimSpace(configuration.WorkflowID)
	sanitized.APIBaseURL = strings.TrimSpace(configuration.APIBaseURL)
	sanitized.EnvironmentPrefix = strings.TrimSpace(configuration.EnvironmentPrefix)
	if len(sanitized.EnvironmentPrefix) == 0 {
		sanitized.EnvironmentPrefix = defaultEnvironmentPrefixConstant
	}
	if sanitized.EnvironmentCount <= 0 {
		sanitized.EnvironmentCount = defaultEnvironmentCountConstant
	}
	if sanitized.SearchLimit <= 0 {
		sanitized.SearchLimit = defaultSearchLimitConstant
	}
	return sanitized
}

// Validate reports the first required setting that is missing.
func (configuration Configuration) Validate() error {
	requiredSettings := []struct {
		value        string
		variableName string
	}{
		{value: configuration.Token, variableName: EnvGitHubToken},
		{value: configuration.Owner, variableName: EnvGitHubOrg},
		{value: configuration.Repository, variableName: EnvGitHubRepo},
	}

	for _, requiredSetting := range requiredSettings {
		if len(strings.TrimSpace(requiredSetting.value)) == 0 {
			return ConfigurationMissingError{VariableName: requiredSetting.variableName}
		}
	}

	return nil
}

// EnvironmentCatalog returns the deployment environments selectable with this configuration.
func (configuration Configuration) EnvironmentCatalog() EnvironmentCatalog {
	sanitized := configuration.Sanitize()
	return EnvironmentCatalog{Prefix: sanitized.EnvironmentPrefix, Count: sanitized.EnvironmentCount}
}

func configurationKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
