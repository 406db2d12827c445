package dispatch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/prdispatch/internal/githubapi"
	"github.com/temirov/prdispatch/internal/prompt"
)

const (
	environmentPromptTitleConstant       = "Select environment"
	pullRequestPromptTitleConstant       = "Select a PR"
	workflowPromptTitleConstant          = "Select workflow to run"
	pullRequestLabelTemplateConstant     = "#%d - %s"
	workflowLabelTemplateConstant        = "%s (%s)"
	commitsResourceConstant              = "commits"
	workflowsResourceConstant            = "workflows"
	branchLocationTemplateConstant       = "in branch %s"
	repositoryLocationTemplateConstant   = "in repository %s"
	authenticatingMessageConstant        = "Authenticating with GitHub...\n"
	authenticatedTemplateConstant        = "Authenticated as: %s\n"
	fetchingPullRequestsTemplateConstant = "Fetching PRs from %s...\n"
	noCandidatesMessageConstant          = "No open pull requests found for your user\n"
	triggeringWorkflowTemplateConstant   = "Triggering workflow: %s (ID: %s)\n"
	dryRunPayloadTemplateConstant        = "Dry run, not sending payload:\n%s\n"
	successHeaderMessageConstant         = "Successfully triggered GitHub Action:\n"
	reportBranchTemplateConstant         = "Branch: %s\n"
	reportCommitTemplateConstant         = "Commit: %s\n"
	reportEnvironmentTemplateConstant    = "Environment: %s\n"
	selectionOutOfRangeTemplateConstant  = "selection %d out of range for %q"
	logMessageIdentityResolved           = "identity resolved"
	logMessageCandidateSearchCompleted   = "pull request search completed"
	logMessageCandidateDetailFailed      = "dropping pull request after detail lookup failure"
	logMessageCandidateAuthorMismatch    = "dropping pull request authored by another user"
	logMessageCandidateWithoutBranch     = "dropping pull request without head branch"
	logMessageCandidatesResolved         = "pull request candidates resolved"
	logMessageCommitResolved             = "latest commit resolved"
	logMessageWorkflowResolved           = "workflow resolved"
	logMessageSendingPayload             = "sending workflow dispatch"
	logMessageDispatchCompleted          = "workflow dispatch accepted"
	logFieldIdentityConstant             = "identity"
	logFieldRepositoryConstant           = "repository"
	logFieldNumberConstant               = "pull_request"
	logFieldAuthorConstant               = "author"
	logFieldCountConstant                = "count"
	logFieldBranchConstant               = "branch"
	logFieldCommitConstant               = "commit"
	logFieldWorkflowConstant             = "workflow_id"
	logFieldStaticWorkflowConstant       = "static"
	logFieldPayloadConstant              = "payload"
)

// Outcome describes how a pipeline run finished.
type Outcome string

// Pipeline outcomes.
const (
	OutcomeDispatched   Outcome = "dispatched"
	OutcomeDryRun       Outcome = "dry_run"
	OutcomeNoCandidates Outcome = "no_candidates"
)

// PullRequestCandidate is an open pull request eligible for dispatch.
type PullRequestCandidate struct {
	Number    int
	Title     string
	BranchRef string
}

// Label renders the candidate as shown in the selection menu.
func (candidate PullRequestCandidate) Label() string {
	return fmt.Sprintf(pullRequestLabelTemplateConstant, candidate.Number, candidate.Title)
}

// Options configure a single pipeline run.
type Options struct {
	Repository       githubapi.Repository
	WorkflowID       string
	Environments     EnvironmentCatalog
	EnvironmentIndex int
	DryRun           bool
}

// Result captures what the pipeline selected and submitted.
type Result struct {
	Outcome          Outcome
	Identity         string
	Candidate        PullRequestCandidate
	Commit           CommitReference
	EnvironmentLabel string
	Workflow         githubapi.Workflow
	Request          githubapi.WorkflowDispatchRequest
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Gateway  RepositoryGateway
	Prompter prompt.SelectionPrompter
	Logger   *zap.Logger
	Output   io.Writer
}

// Service drives the fetch, select, and dispatch pipeline.
type Service struct {
	gateway  RepositoryGateway
	prompter prompt.SelectionPrompter
	logger   *zap.Logger
	output   io.Writer
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}

	return &Service{
		gateway:  dependencies.Gateway,
		prompter: dependencies.Prompter,
		logger:   logger,
		output:   output,
	}, nil
}

// Run resolves the identity, fetches candidate pull requests while the user picks an
// environment, then resolves the commit and workflow and submits a single dispatch.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	service.printf(authenticatingMessageConstant)
	identity, identityError := service.gateway.CurrentUser(executionContext)
	if identityError != nil {
		return Result{}, AuthenticationError{Cause: identityError}
	}
	service.printf(authenticatedTemplateConstant, identity)
	service.logger.Info(logMessageIdentityResolved, zap.String(logFieldIdentityConstant, identity))

	result := Result{Identity: identity}

	service.printf(fetchingPullRequestsTemplateConstant, options.Repository.FullName())

	var candidates []PullRequestCandidate
	fetchGroup := &errgroup.Group{}
	fetchGroup.Go(func() error {
		fetchedCandidates, fetchError := service.fetchCandidates(executionContext, identity, options.Repository)
		if fetchError != nil {
			return fetchError
		}
		candidates = fetchedCandidates
		return nil
	})

	environmentIndex, environmentPromptError := service.selectOption(environmentPromptTitleConstant, options.Environments.Labels(), options.EnvironmentIndex)
	fetchError := fetchGroup.Wait()
	if environmentPromptError != nil {
		return Result{}, environmentPromptError
	}
	if fetchError != nil {
		return Result{}, CandidateFetchError{Cause: fetchError}
	}

	environmentLabel, labelError := options.Environments.Label(environmentIndex)
	if labelError != nil {
		return Result{}, labelError
	}
	result.EnvironmentLabel = environmentLabel

	if len(candidates) == 0 {
		service.printf(noCandidatesMessageConstant)
		result.Outcome = OutcomeNoCandidates
		return result, nil
	}

	candidateLabels := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		candidateLabels = append(candidateLabels, candidate.Label())
	}
	candidateIndex, candidatePromptError := service.selectOption(pullRequestPromptTitleConstant, candidateLabels, 0)
	if candidatePromptError != nil {
		return Result{}, candidatePromptError
	}
	result.Candidate = candidates[candidateIndex]

	commit, commitError := service.resolveCommit(executionContext, options.Repository, result.Candidate.BranchRef)
	if commitError != nil {
		return Result{}, commitError
	}
	result.Commit = commit

	workflow, workflowError := service.resolveWorkflow(executionContext, options)
	if workflowError != nil {
		return Result{}, workflowError
	}
	result.Workflow = workflow

	request, requestError := BuildDispatchRequest(options.Repository, workflow.ID, result.Candidate.BranchRef, commit, environmentLabel)
	if requestError != nil {
		return Result{}, requestError
	}
	result.Request = request

	payload, payloadError := RenderPayload(request)
	if payloadError != nil {
		return Result{}, payloadError
	}

	if options.DryRun {
		service.printf(dryRunPayloadTemplateConstant, payload)
		result.Outcome = OutcomeDryRun
		return result, nil
	}

	service.printf(triggeringWorkflowTemplateConstant, workflowDisplayName(workflow), workflow.ID)
	service.logger.Info(logMessageSendingPayload, zap.String(logFieldWorkflowConstant, workflow.ID), zap.String(logFieldPayloadConstant, payload))

	if dispatchError := service.gateway.DispatchWorkflow(executionContext, request); dispatchError != nil {
		return Result{}, RemoteRequestError{Action: dispatchWorkflowActionConstant, Hint: workflowInputsHintConstant, Cause: dispatchError}
	}
	service.logger.Info(logMessageDispatchCompleted, zap.String(logFieldBranchConstant, request.Ref), zap.String(logFieldCommitConstant, commit.ShortSHA))

	service.printf(successHeaderMessageConstant)
	service.printf(reportBranchTemplateConstant, request.Ref)
	service.printf(reportCommitTemplateConstant, commit.ShortSHA)
	service.printf(reportEnvironmentTemplateConstant, environmentLabel)

	result.Outcome = OutcomeDispatched
	return result, nil
}

// fetchCandidates runs on the background task; it only logs and never writes to the output.
func (service *Service) fetchCandidates(executionContext context.Context, identity string, repository githubapi.Repository) ([]PullRequestCandidate, error) {
	summaries, searchError := service.gateway.SearchOpenPullRequests(executionContext, identity, repository)
	if searchError != nil {
		return nil, RemoteRequestError{Action: searchPullRequestsActionConstant, Hint: repositoryAccessHintConstant, Cause: searchError}
	}
	service.logger.Debug(logMessageCandidateSearchCompleted, zap.String(logFieldRepositoryConstant, repository.FullName()), zap.Int(logFieldCountConstant, len(summaries)))

	candidates := make([]PullRequestCandidate, 0, len(summaries))
	for _, summary := range summaries {
		pullRequest, detailError := service.gateway.GetPullRequest(executionContext, repository, summary.Number)
		if detailError != nil {
			service.logger.Info(logMessageCandidateDetailFailed, zap.Int(logFieldNumberConstant, summary.Number), zap.Error(detailError))
			continue
		}

		author := pullRequest.Author
		if len(author) == 0 {
			author = summary.Author
		}
		if !strings.EqualFold(author, identity) {
			service.logger.Debug(logMessageCandidateAuthorMismatch, zap.Int(logFieldNumberConstant, summary.Number), zap.String(logFieldAuthorConstant, author))
			continue
		}

		if len(strings.TrimSpace(pullRequest.HeadRef)) == 0 {
			service.logger.Info(logMessageCandidateWithoutBranch, zap.Int(logFieldNumberConstant, summary.Number))
			continue
		}

		candidates = append(candidates, PullRequestCandidate{
			Number:    pullRequest.Number,
			Title:     pullRequest.Title,
			BranchRef: pullRequest.HeadRef,
		})
	}

	service.logger.Debug(logMessageCandidatesResolved, zap.Int(logFieldCountConstant, len(candidates)))
	return candidates, nil
}

func (service *Service) resolveCommit(executionContext context.Context, repository githubapi.Repository, branch string) (CommitReference, error) {
	commits, listError := service.gateway.ListCommits(executionContext, repository, branch)
	if listError != nil {
		return CommitReference{}, RemoteRequestError{Action: listCommitsActionConstant, Hint: branchAccessHintConstant, Cause: listError}
	}

	if len(commits) == 0 || len(strings.TrimSpace(commits[0].SHA)) == 0 {
		return CommitReference{}, EmptyResultError{Resource: commitsResourceConstant, Location: fmt.Sprintf(branchLocationTemplateConstant, branch)}
	}

	commit := NewCommitReference(commits[0].SHA)
	service.logger.Debug(logMessageCommitResolved, zap.String(logFieldBranchConstant, branch), zap.String(logFieldCommitConstant, commit.FullSHA))
	return commit, nil
}

func (service *Service) resolveWorkflow(executionContext context.Context, options Options) (githubapi.Workflow, error) {
	staticWorkflowID := strings.TrimSpace(options.WorkflowID)
	if len(staticWorkflowID) > 0 {
		service.logger.Debug(logMessageWorkflowResolved, zap.String(logFieldWorkflowConstant, staticWorkflowID), zap.Bool(logFieldStaticWorkflowConstant, true))
		return githubapi.Workflow{ID: staticWorkflowID}, nil
	}

	workflows, listError := service.gateway.ListWorkflows(executionContext, options.Repository)
	if listError != nil {
		return githubapi.Workflow{}, RemoteRequestError{Action: listWorkflowsActionConstant, Hint: workflowAccessHintConstant, Cause: listError}
	}
	if len(workflows) == 0 {
		return githubapi.Workflow{}, EmptyResultError{Resource: workflowsResourceConstant, Location: fmt.Sprintf(repositoryLocationTemplateConstant, options.Repository.FullName())}
	}

	workflowLabels := make([]string, 0, len(workflows))
	for _, workflow := range workflows {
		workflowLabels = append(workflowLabels, fmt.Sprintf(workflowLabelTemplateConstant, workflow.Name, workflow.Path))
	}

	workflowIndex, promptError := service.selectOption(workflowPromptTitleConstant, workflowLabels, 0)
	if promptError != nil {
		return githubapi.Workflow{}, promptError
	}

	selectedWorkflow := workflows[workflowIndex]
	service.logger.Debug(logMessageWorkflowResolved, zap.String(logFieldWorkflowConstant, selectedWorkflow.ID), zap.Bool(logFieldStaticWorkflowConstant, false))
	return selectedWorkflow, nil
}

func (service *Service) selectOption(title string, labels []string, defaultIndex int) (int, error) {
	selectedIndex, selectionError := service.prompter.Select(title, labels, defaultIndex)
	if selectionError != nil {
		return 0, selectionError
	}
	if selectedIndex < 0 || selectedIndex >= len(labels) {
		return 0, fmt.Errorf(selectionOutOfRangeTemplateConstant, selectedIndex, title)
	}
	return selectedIndex, nil
}

func (service *Service) printf(format string, arguments ...any) {
	fmt.Fprintf(service.output, format, arguments...)
}

func workflowDisplayName(workflow githubapi.Workflow) string {
	if len(workflow.Name) == 0 {
		return workflow.ID
	}
	return workflow.Name
}
