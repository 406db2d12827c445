package dispatch

import (
	"errors"
	"fmt"
)

const (
	configurationMissingTemplateConstant = "%s not found in environment"
	authenticationFailedTemplateConstant = "failed to fetch current user, check your GitHub token has correct permissions: %v"
	remoteRequestFailedTemplateConstant  = "failed to %s, %s: %v"
	candidateFetchFailedTemplateConstant = "unable to fetch pull requests: %v"
	emptyResultTemplateConstant          = "no %s found %s"
	environmentArgumentTemplateConstant  = "invalid environment %q: %s"
	invalidDispatchInputTemplateConstant = "dispatch input %s must not be empty"
	emptyResultMessageConstant           = "empty result"
	gatewayNotConfiguredMessageConstant  = "repository gateway not configured"
	prompterNotConfiguredMessageConstant = "selection prompter not configured"
	repositoryAccessHintConstant         = "check repository name and permissions"
	branchAccessHintConstant             = "check the pull request branch still exists"
	workflowAccessHintConstant           = "check repository name and that GitHub Actions is enabled"
	workflowInputsHintConstant           = "check workflow inputs match your workflow file"
	searchPullRequestsActionConstant     = "fetch PRs"
	listCommitsActionConstant            = "fetch commits"
	listWorkflowsActionConstant          = "fetch workflows"
	dispatchWorkflowActionConstant       = "trigger workflow"
)

var (
	// ErrEmptyResult matches every EmptyResultError.
	ErrEmptyResult = errors.New(emptyResultMessageConstant)

	// ErrGatewayNotConfigured indicates the service was constructed without a gateway.
	ErrGatewayNotConfigured = errors.New(gatewayNotConfiguredMessageConstant)

	// ErrPrompterNotConfigured indicates the service was constructed without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterNotConfiguredMessageConstant)
)

// ConfigurationMissingError reports a required environment variable that is absent.
type ConfigurationMissingError struct {
	VariableName string
}

// Error describes the missing variable.
func (missingError ConfigurationMissingError) Error() string {
	return fmt.Sprintf(configurationMissingTemplateConstant, missingError.VariableName)
}

// AuthenticationError reports that GitHub rejected the identity lookup.
type AuthenticationError struct {
	Cause error
}

// Error describes the failure with a remediation hint.
func (authenticationError AuthenticationError) Error() string {
	return fmt.Sprintf(authenticationFailedTemplateConstant, authenticationError.Cause)
}

// Unwrap exposes the gateway error.
func (authenticationError AuthenticationError) Unwrap() error {
	return authenticationError.Cause
}

// RemoteRequestError wraps a failed gateway call with a one-line remediation hint.
type RemoteRequestError struct {
	Action string
	Hint   string
	Cause  error
}

// Error describes the failed call and its hint.
func (requestError RemoteRequestError) Error() string {
	return fmt.Sprintf(remoteRequestFailedTemplateConstant, requestError.Action, requestError.Hint, requestError.Cause)
}

// Unwrap exposes the gateway error.
func (requestError RemoteRequestError) Unwrap() error {
	return requestError.Cause
}

// CandidateFetchError reports a failure of the background pull request fetch.
type CandidateFetchError struct {
	Cause error
}

// Error describes the fetch failure.
func (fetchError CandidateFetchError) Error() string {
	return fmt.Sprintf(candidateFetchFailedTemplateConstant, fetchError.Cause)
}

// Unwrap exposes the underlying failure.
func (fetchError CandidateFetchError) Unwrap() error {
	return fetchError.Cause
}

// EmptyResultError reports a lookup that succeeded but produced nothing usable.
type EmptyResultError struct {
	Resource string
	Location string
}

// Error describes what was missing and where.
func (emptyError EmptyResultError) Error() string {
	return fmt.Sprintf(emptyResultTemplateConstant, emptyError.Resource, emptyError.Location)
}

// Is matches ErrEmptyResult.
func (emptyError EmptyResultError) Is(target error) bool {
	return target == ErrEmptyResult
}

// EnvironmentArgumentError reports an environment number outside the accepted range.
type EnvironmentArgumentError struct {
	Argument string
	Message  string
}

// Error describes the rejected argument.
func (argumentError EnvironmentArgumentError) Error() string {
	return fmt.Sprintf(environmentArgumentTemplateConstant, argumentError.Argument, argumentError.Message)
}

// InvalidDispatchInputError reports an empty value that would otherwise reach the dispatch call.
type InvalidDispatchInputError struct {
	FieldName string
}

// Error describes the empty field.
func (inputError InvalidDispatchInputError) Error() string {
	return fmt.Sprintf(invalidDispatchInputTemplateConstant, inputError.FieldName)
}
