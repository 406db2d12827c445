package dispatch

import (
	"context"
	"sync"

	"github.com/temirov/prdispatch/internal/githubapi"
)

const (
	callCurrentUser            = "CurrentUser"
	callSearchOpenPullRequests = "SearchOpenPullRequests"
	callGetPullRequest         = "GetPullRequest"
	callListCommits            = "ListCommits"
	callListWorkflows          = "ListWorkflows"
	callDispatchWorkflow       = "DispatchWorkflow"
)

type recordingGateway struct {
	mutex          sync.Mutex
	login          string
	identityError  error
	summaries      []githubapi.PullRequestSummary
	searchError    error
	searchStarted  chan struct{}
	releaseSearch  chan struct{}
	pullRequests   map[int]githubapi.PullRequest
	detailErrors   map[int]error
	commits        map[string][]githubapi.Commit
	commitsError   error
	workflows      []githubapi.Workflow
	workflowsError error
	dispatchError  error
	calls          []string
	dispatched     []githubapi.WorkflowDispatchRequest
}

func (gateway *recordingGateway) record(call string) {
	gateway.mutex.Lock()
	defer gateway.mutex.Unlock()
	gateway.calls = append(gateway.calls, call)
}

func (gateway *recordingGateway) recordedCalls() []string {
	gateway.mutex.Lock()
	defer gateway.mutex.Unlock()
	return append([]string(nil), gateway.calls...)
}

func (gateway *recordingGateway) CurrentUser(context.Context) (string, error) {
	gateway.record(callCurrentUser)
	if gateway.identityError != nil {
		return "", gateway.identityError
	}
	return gateway.login, nil
}

func (gateway *recordingGateway) SearchOpenPullRequests(context.Context, string, githubapi.Repository) ([]githubapi.PullRequestSummary, error) {
	gateway.record(callSearchOpenPullRequests)
	if gateway.searchStarted != nil {
		close(gateway.searchStarted)
	}
	if gateway.releaseSearch != nil {
		<-gateway.releaseSearch
	}
	if gateway.searchError != nil {
		return nil, gateway.searchError
	}
	return append([]githubapi.PullRequestSummary(nil), gateway.summaries...), nil
}

func (gateway *recordingGateway) GetPullRequest(_ context.Context, _ githubapi.Repository, number int) (githubapi.PullRequest, error) {
	gateway.record(callGetPullRequest)
	if detailError, exists := gateway.detailErrors[number]; exists {
		return githubapi.PullRequest{}, detailError
	}
	return gateway.pullRequests[number], nil
}

func (gateway *recordingGateway) ListCommits(_ context.Context, _ githubapi.Repository, branch string) ([]githubapi.Commit, error) {
	gateway.record(callListCommits)
	if gateway.commitsError != nil {
		return nil, gateway.commitsError
	}
	return gateway.commits[branch], nil
}

func (gateway *recordingGateway) ListWorkflows(context.Context, githubapi.Repository) ([]githubapi.Workflow, error) {
	gateway.record(callListWorkflows)
	if gateway.workflowsError != nil {
		return nil, gateway.workflowsError
	}
	return gateway.workflows, nil
}

func (gateway *recordingGateway) DispatchWorkflow(_ context.Context, request githubapi.WorkflowDispatchRequest) error {
	gateway.record(callDispatchWorkflow)
	gateway.mutex.Lock()
	gateway.dispatched = append(gateway.dispatched, request)
	gateway.mutex.Unlock()
	return gateway.dispatchError
}

type promptRequest struct {
	title        string
	options      []string
	defaultIndex int
}

type promptResponse struct {
	index int
	err   error
}

type scriptedPrompter struct {
	responses    []promptResponse
	requests     []promptRequest
	beforeSelect func(requestIndex int)
}

func (prompter *scriptedPrompter) Select(title string, options []string, defaultIndex int) (int, error) {
	requestIndex := len(prompter.requests)
	prompter.requests = append(prompter.requests, promptRequest{title: title, options: append([]string(nil), options...), defaultIndex: defaultIndex})
	if prompter.beforeSelect != nil {
		prompter.beforeSelect(requestIndex)
	}
	if requestIndex >= len(prompter.responses) {
		return defaultIndex, nil
	}
	response := prompter.responses[requestIndex]
	return response.index, response.err
}

// twoPullRequestGateway models the octocat user with #10 on fix-bug (two commits) and
// #11 on add-feat (one commit).
func twoPullRequestGateway() *recordingGateway {
	return &recordingGateway{
		login: "octocat",
		summaries: []githubapi.PullRequestSummary{
			{Number: 10, Title: "Fix bug", Author: "octocat"},
			{Number: 11, Title: "Add feature", Author: "octocat"},
		},
		pullRequests: map[int]githubapi.PullRequest{
			10: {Number: 10, Title: "Fix bug", HeadRef: "fix-bug", Author: "octocat"},
			11: {Number: 11, Title: "Add feature", HeadRef: "add-feat", Author: "octocat"},
		},
		commits: map[string][]githubapi.Commit{
			"fix-bug": {
				{SHA: "aaaaaaa1111111111111111111111111111111111"},
				{SHA: "bbbbbbb2222222222222222222222222222222222"},
			},
			"add-feat": {
				{SHA: "c0ffee93333333333333333333333333333333333"},
			},
		},
	}
}
