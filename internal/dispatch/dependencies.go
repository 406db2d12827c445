package dispatch

import (
	"context"
	"io"

	"github.com/temirov/prdispatch/internal/githubapi"
	"github.com/temirov/prdispatch/internal/prompt"
)

// RepositoryGateway exposes the GitHub operations consumed by the dispatch pipeline.
type RepositoryGateway interface {
	CurrentUser(executionContext context.Context) (string, error)
	SearchOpenPullRequests(executionContext context.Context, author string, repository githubapi.Repository) ([]githubapi.PullRequestSummary, error)
	GetPullRequest(executionContext context.Context, repository githubapi.Repository, number int) (githubapi.PullRequest, error)
	ListCommits(executionContext context.Context, repository githubapi.Repository, branch string) ([]githubapi.Commit, error)
	ListWorkflows(executionContext context.Context, repository githubapi.Repository) ([]githubapi.Workflow, error)
	DispatchWorkflow(executionContext context.Context, request githubapi.WorkflowDispatchRequest) error
}

// GatewayFactory builds a gateway from the resolved configuration.
type GatewayFactory func(executionContext context.Context, configuration Configuration) (RepositoryGateway, error)

// PrompterFactory builds the selection prompter bound to the command streams.
type PrompterFactory func(input io.Reader, output io.Writer, plain bool) prompt.SelectionPrompter
