package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v44/github"
)

const (
	ownerFieldNameConstant                  = "owner"
	repositoryFieldNameConstant             = "repository"
	authorFieldNameConstant                 = "author"
	branchFieldNameConstant                 = "branch"
	numberFieldNameConstant                 = "number"
	workflowFieldNameConstant               = "workflow_id"
	refFieldNameConstant                    = "ref"
	baseURLFieldNameConstant                = "base_url"
	requiredValueMessageConstant            = "value required"
	positiveValueMessageConstant            = "value must be positive"
	invalidURLMessageTemplateConstant       = "invalid url: %s"
	clientNotConfiguredMessageConstant      = "github http client not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	repositoryFullNameTemplateConstant      = "%s/%s"
	openPullRequestQueryTemplateConstant    = "is:pr is:open author:%s repo:%s"
	trailingSlashConstant                   = "/"
	searchResultLimitDefaultValueConstant   = 100
	searchResultLimitMaximumValueConstant   = 100
	commitPageSizeConstant                  = 1
	workflowPageSizeConstant                = 100
	currentUserOperationNameConstant        = OperationName("CurrentUser")
	searchPullRequestsOperationNameConstant = OperationName("SearchOpenPullRequests")
	getPullRequestOperationNameConstant     = OperationName("GetPullRequest")
	listCommitsOperationNameConstant        = OperationName("ListCommits")
	listWorkflowsOperationNameConstant      = OperationName("ListWorkflows")
	dispatchWorkflowOperationNameConstant   = OperationName("DispatchWorkflow")
)

// OperationName describes a named GitHub REST workflow supported by the client.
type OperationName string

// Repository identifies an owner/name pair on GitHub.
type Repository struct {
	Owner string
	Name  string
}

// FullName renders the owner/name form used by search qualifiers.
func (repository Repository) FullName() string {
	return fmt.Sprintf(repositoryFullNameTemplateConstant, repository.Owner, repository.Name)
}

// PullRequestSummary is the subset of a search hit needed to resolve pull request details.
type PullRequestSummary struct {
	Number int
	Title  string
	Author string
}

// PullRequest represents the resolved details of a pull request.
type PullRequest struct {
	Number  int
	Title   string
	HeadRef string
	Author  string
}

// Commit identifies a commit by its full SHA.
type Commit struct {
	SHA string
}

// Workflow describes a GitHub Actions workflow definition.
type Workflow struct {
	ID   string
	Name string
	Path string
}

// WorkflowDispatchRequest captures a workflow_dispatch event submission.
type WorkflowDispatchRequest struct {
	Repository Repository
	WorkflowID string
	Ref        string
	Inputs     map[string]string
}

// ClientOptions configures client construction.
type ClientOptions struct {
	HTTPClient        *http.Client
	BaseURL           string
	SearchResultLimit int
}

// Client performs GitHub REST API calls through go-github. Each method is a single
// round trip with no retries or caching.
type Client struct {
	github            *github.Client
	searchResultLimit int
}

var (
	// ErrHTTPClientNotConfigured indicates the client was constructed without an HTTP client.
	ErrHTTPClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps transport and API failures for GitHub operations.
type OperationError struct {
	Operation  OperationName
	StatusCode int
	Cause      error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// Unauthorized reports whether GitHub rejected the credentials or their scope.
func (operationError OperationError) Unauthorized() bool {
	return operationError.StatusCode == http.StatusUnauthorized || operationError.StatusCode == http.StatusForbidden
}

// IsUnauthorized reports whether the error chain carries a credential rejection.
func IsUnauthorized(err error) bool {
	var operationError OperationError
	if !errors.As(err, &operationError) {
		return false
	}
	return operationError.Unauthorized()
}

// NewClient constructs a GitHub REST client. An empty BaseURL targets api.github.com.
func NewClient(options ClientOptions) (*Client, error) {
	if options.HTTPClient == nil {
		return nil, ErrHTTPClientNotConfigured
	}

	githubClient := github.NewClient(options.HTTPClient)

	trimmedBaseURL := strings.TrimSpace(options.BaseURL)
	if len(trimmedBaseURL) > 0 {
		if !strings.HasSuffix(trimmedBaseURL, trailingSlashConstant) {
			trimmedBaseURL += trailingSlashConstant
		}
		parsedBaseURL, parseError := url.Parse(trimmedBaseURL)
		if parseError != nil || len(parsedBaseURL.Host) == 0 {
			return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: fmt.Sprintf(invalidURLMessageTemplateConstant, options.BaseURL)}
		}
		githubClient.BaseURL = parsedBaseURL
	}

	searchResultLimit := options.SearchResultLimit
	if searchResultLimit <= 0 {
		searchResultLimit = searchResultLimitDefaultValueConstant
	}
	if searchResultLimit > searchResultLimitMaximumValueConstant {
		searchResultLimit = searchResultLimitMaximumValueConstant
	}

	return &Client{github: githubClient, searchResultLimit: searchResultLimit}, nil
}

// CurrentUser resolves the login of the authenticated user.
func (client *Client) CurrentUser(executionContext context.Context) (string, error) {
	user, response, requestError := client.github.Users.Get(executionContext, "")
	if requestError != nil {
		return "", newOperationError(currentUserOperationNameConstant, response, requestError)
	}
	return user.GetLogin(), nil
}

// SearchOpenPullRequests finds open pull requests authored by author in the repository,
// preserving the order returned by the search API.
func (client *Client) SearchOpenPullRequests(executionContext context.Context, author string, repository Repository) ([]PullRequestSummary, error) {
	if validationError := validateRepository(repository); validationError != nil {
		return nil, validationError
	}

	trimmedAuthor := strings.TrimSpace(author)
	if len(trimmedAuthor) == 0 {
		return nil, InvalidInputError{FieldName: authorFieldNameConstant, Message: requiredValueMessageConstant}
	}

	query := fmt.Sprintf(openPullRequestQueryTemplateConstant, trimmedAuthor, repository.FullName())
	searchOptions := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: client.searchResultLimit}}

	searchResult, response, requestError := client.github.Search.Issues(executionContext, query, searchOptions)
	if requestError != nil {
		return nil, newOperationError(searchPullRequestsOperationNameConstant, response, requestError)
	}

	summaries := make([]PullRequestSummary, 0, len(searchResult.Issues))
	for _, issue := range searchResult.Issues {
		if issue == nil || !issue.IsPullRequest() {
			continue
		}
		summaries = append(summaries, PullRequestSummary{
			Number: issue.GetNumber(),
			Title:  issue.GetTitle(),
			Author: issue.GetUser().GetLogin(),
		})
	}

	return summaries, nil
}

// GetPullRequest resolves title, author, and head branch for a pull request.
func (client *Client) GetPullRequest(executionContext context.Context, repository Repository, number int) (PullRequest, error) {
	if validationError := validateRepository(repository); validationError != nil {
		return PullRequest{}, validationError
	}
	if number <= 0 {
		return PullRequest{}, InvalidInputError{FieldName: numberFieldNameConstant, Message: positiveValueMessageConstant}
	}

	pullRequest, response, requestError := client.github.PullRequests.Get(executionContext, repository.Owner, repository.Name, number)
	if requestError != nil {
		return PullRequest{}, newOperationError(getPullRequestOperationNameConstant, response, requestError)
	}

	return PullRequest{
		Number:  pullRequest.GetNumber(),
		Title:   pullRequest.GetTitle(),
		HeadRef: pullRequest.GetHead().GetRef(),
		Author:  pullRequest.GetUser().GetLogin(),
	}, nil
}

// ListCommits returns commits reachable from branch, most recent first. Only the
// newest commit is requested.
func (client *Client) ListCommits(executionContext context.Context, repository Repository, branch string) ([]Commit, error) {
	if validationError := validateRepository(repository); validationError != nil {
		return nil, validationError
	}

	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return nil, InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	listOptions := &github.CommitsListOptions{
		SHA:         trimmedBranch,
		ListOptions: github.ListOptions{PerPage: commitPageSizeConstant},
	}

	repositoryCommits, response, requestError := client.github.Repositories.ListCommits(executionContext, repository.Owner, repository.Name, listOptions)
	if requestError != nil {
		return nil, newOperationError(listCommitsOperationNameConstant, response, requestError)
	}

	commits := make([]Commit, 0, len(repositoryCommits))
	for _, repositoryCommit := range repositoryCommits {
		if repositoryCommit == nil {
			continue
		}
		commits = append(commits, Commit{SHA: repositoryCommit.GetSHA()})
	}

	return commits, nil
}

// ListWorkflows enumerates the workflows defined in the repository.
func (client *Client) ListWorkflows(executionContext context.Context, repository Repository) ([]Workflow, error) {
	if validationError := validateRepository(repository); validationError != nil {
		return nil, validationError
	}

	workflowList, response, requestError := client.github.Actions.ListWorkflows(executionContext, repository.Owner, repository.Name, &github.ListOptions{PerPage: workflowPageSizeConstant})
	if requestError != nil {
		return nil, newOperationError(listWorkflowsOperationNameConstant, response, requestError)
	}

	workflows := make([]Workflow, 0, len(workflowList.Workflows))
	for _, workflow := range workflowList.Workflows {
		if workflow == nil {
			continue
		}
		workflows = append(workflows, Workflow{
			ID:   strconv.FormatInt(workflow.GetID(), 10),
			Name: workflow.GetName(),
			Path: workflow.GetPath(),
		})
	}

	return workflows, nil
}

// DispatchWorkflow submits a workflow_dispatch event. Numeric workflow identifiers
// dispatch by ID; anything else is treated as the workflow file name.
func (client *Client) DispatchWorkflow(executionContext context.Context, request WorkflowDispatchRequest) error {
	if validationError := validateRepository(request.Repository); validationError != nil {
		return validationError
	}

	workflowIdentifier := strings.TrimSpace(request.WorkflowID)
	if len(workflowIdentifier) == 0 {
		return InvalidInputError{FieldName: workflowFieldNameConstant, Message: requiredValueMessageConstant}
	}

	if len(strings.TrimSpace(request.Ref)) == 0 {
		return InvalidInputError{FieldName: refFieldNameConstant, Message: requiredValueMessageConstant}
	}

	event := github.CreateWorkflowDispatchEventRequest{
		Ref:    request.Ref,
		Inputs: make(map[string]interface{}, len(request.Inputs)),
	}
	for inputName, inputValue := range request.Inputs {
		event.Inputs[inputName] = inputValue
	}

	var (
		response      *github.Response
		dispatchError error
	)
	if numericIdentifier, parseError := strconv.ParseInt(workflowIdentifier, 10, 64); parseError == nil {
		response, dispatchError = client.github.Actions.CreateWorkflowDispatchEventByID(executionContext, request.Repository.Owner, request.Repository.Name, numericIdentifier, event)
	} else {
		response, dispatchError = client.github.Actions.CreateWorkflowDispatchEventByFileName(executionContext, request.Repository.Owner, request.Repository.Name, workflowIdentifier, event)
	}
	if dispatchError != nil {
		return newOperationError(dispatchWorkflowOperationNameConstant, response, dispatchError)
	}

	return nil
}

func validateRepository(repository Repository) error {
	if len(strings.TrimSpace(repository.Owner)) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(repository.Name)) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func newOperationError(operation OperationName, response *github.Response, cause error) OperationError {
	statusCode := 0
	if response != nil && response.Response != nil {
		statusCode = response.StatusCode
	}
	return OperationError{Operation: operation, StatusCode: statusCode, Cause: cause}
}
