package githubapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prdispatch/internal/githubapi"
)

const (
	testOwnerConstant              = "acme"
	testRepositoryNameConstant     = "service"
	testLoginConstant              = "octocat"
	testBranchConstant             = "fix-bug"
	testCommitSHAConstant          = "0123456789abcdef0123456789abcdef01234567"
	testNumericWorkflowIDConstant  = "4242"
	testWorkflowFileNameConstant   = "deploy.yml"
	testExpectedSearchQueryConst   = "is:pr is:open author:octocat repo:acme/service"
	testUserPathConstant           = "/user"
	testSearchPathConstant         = "/search/issues"
	testPullRequestPathConstant    = "/repos/acme/service/pulls/10"
	testCommitsPathConstant        = "/repos/acme/service/commits"
	testWorkflowsPathConstant      = "/repos/acme/service/actions/workflows"
	testDispatchByIDPathConstant   = "/repos/acme/service/actions/workflows/4242/dispatches"
	testDispatchByFilePathConstant = "/repos/acme/service/actions/workflows/deploy.yml/dispatches"
)

var testRepository = githubapi.Repository{Owner: testOwnerConstant, Name: testRepositoryNameConstant}

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   []byte
}

type apiFixture struct {
	server   *httptest.Server
	client   *githubapi.Client
	requests []recordedRequest
}

func newAPIFixture(testInstance *testing.T, routes map[string]http.HandlerFunc) *apiFixture {
	testInstance.Helper()

	fixture := &apiFixture{}
	mux := http.NewServeMux()
	for routePath, handler := range routes {
		routeHandler := handler
		mux.HandleFunc(routePath, func(responseWriter http.ResponseWriter, request *http.Request) {
			body, _ := io.ReadAll(request.Body)
			fixture.requests = append(fixture.requests, recordedRequest{
				Method: request.Method,
				Path:   request.URL.Path,
				Query:  request.URL.Query(),
				Body:   body,
			})
			routeHandler(responseWriter, request)
		})
	}

	fixture.server = httptest.NewServer(mux)
	testInstance.Cleanup(fixture.server.Close)

	client, clientError := githubapi.NewClient(githubapi.ClientOptions{HTTPClient: fixture.server.Client(), BaseURL: fixture.server.URL})
	require.NoError(testInstance, clientError)
	fixture.client = client

	return fixture
}

func respondJSON(payload string) http.HandlerFunc {
	return func(responseWriter http.ResponseWriter, _ *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(responseWriter, payload)
	}
}

func respondStatus(statusCode int) http.HandlerFunc {
	return func(responseWriter http.ResponseWriter, _ *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		responseWriter.WriteHeader(statusCode)
		_, _ = io.WriteString(responseWriter, `{"message":"failure"}`)
	}
}

func TestNewClientValidation(testInstance *testing.T) {
	testInstance.Run("nil_http_client", func(testInstance *testing.T) {
		client, creationError := githubapi.NewClient(githubapi.ClientOptions{})
		require.ErrorIs(testInstance, creationError, githubapi.ErrHTTPClientNotConfigured)
		require.Nil(testInstance, client)
	})

	testInstance.Run("invalid_base_url", func(testInstance *testing.T) {
		client, creationError := githubapi.NewClient(githubapi.ClientOptions{HTTPClient: http.DefaultClient, BaseURL: "not a url"})
		require.IsType(testInstance, githubapi.InvalidInputError{}, creationError)
		require.Nil(testInstance, client)
	})
}

func TestCurrentUser(testInstance *testing.T) {
	testInstance.Run("success", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
			testUserPathConstant: respondJSON(`{"login":"octocat"}`),
		})

		login, userError := fixture.client.CurrentUser(context.Background())
		require.NoError(testInstance, userError)
		require.Equal(testInstance, testLoginConstant, login)
	})

	testInstance.Run("unauthorized", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
			testUserPathConstant: respondStatus(http.StatusUnauthorized),
		})

		_, userError := fixture.client.CurrentUser(context.Background())
		require.Error(testInstance, userError)
		require.IsType(testInstance, githubapi.OperationError{}, userError)
		require.True(testInstance, githubapi.IsUnauthorized(userError))
	})

	testInstance.Run("server_error_is_not_unauthorized", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
			testUserPathConstant: respondStatus(http.StatusBadGateway),
		})

		_, userError := fixture.client.CurrentUser(context.Background())
		require.Error(testInstance, userError)
		require.False(testInstance, githubapi.IsUnauthorized(userError))
	})
}

func TestSearchOpenPullRequests(testInstance *testing.T) {
	testInstance.Run("preserves_order_and_skips_issues", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
			testSearchPathConstant: respondJSON(`{"total_count":3,"items":[
				{"number":11,"title":"Add feature","user":{"login":"octocat"},"pull_request":{"url":"x"}},
				{"number":12,"title":"An issue","user":{"login":"octocat"}},
				{"number":10,"title":"Fix bug","user":{"login":"octocat"},"pull_request":{"url":"y"}}
			]}`),
		})

		summaries, searchError := fixture.client.SearchOpenPullRequests(context.Background(), testLoginConstant, testRepository)
		require.NoError(testInstance, searchError)
		require.Equal(testInstance, []githubapi.PullRequestSummary{
			{Number: 11, Title: "Add feature", Author: testLoginConstant},
			{Number: 10, Title: "Fix bug", Author: testLoginConstant},
		}, summaries)

		require.Len(testInstance, fixture.requests, 1)
		require.Equal(testInstance, testExpectedSearchQueryConst, fixture.requests[0].Query["q"][0])
	})

	testInstance.Run("remote_failure", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
			testSearchPathConstant: respondStatus(http.StatusUnprocessableEntity),
		})

		_, searchError := fixture.client.SearchOpenPullRequests(context.Background(), testLoginConstant, testRepository)
		require.IsType(testInstance, githubapi.OperationError{}, searchError)
	})

	testInstance.Run("author_required", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, nil)

		_, searchError := fixture.client.SearchOpenPullRequests(context.Background(), " ", testRepository)
		require.IsType(testInstance, githubapi.InvalidInputError{}, searchError)
		require.Empty(testInstance, fixture.requests)
	})

	testInstance.Run("repository_required", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, nil)

		_, searchError := fixture.client.SearchOpenPullRequests(context.Background(), testLoginConstant, githubapi.Repository{Owner: testOwnerConstant})
		require.IsType(testInstance, githubapi.InvalidInputError{}, searchError)
	})
}

func TestGetPullRequest(testInstance *testing.T) {
	fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
		testPullRequestPathConstant: respondJSON(`{"number":10,"title":"Fix bug","user":{"login":"octocat"},"head":{"ref":"fix-bug"}}`),
	})

	pullRequest, getError := fixture.client.GetPullRequest(context.Background(), testRepository, 10)
	require.NoError(testInstance, getError)
	require.Equal(testInstance, githubapi.PullRequest{Number: 10, Title: "Fix bug", HeadRef: testBranchConstant, Author: testLoginConstant}, pullRequest)

	_, invalidNumberError := fixture.client.GetPullRequest(context.Background(), testRepository, 0)
	require.IsType(testInstance, githubapi.InvalidInputError{}, invalidNumberError)
}

func TestListCommits(testInstance *testing.T) {
	testInstance.Run("requests_branch_head", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
			testCommitsPathConstant: respondJSON(`[{"sha":"` + testCommitSHAConstant + `"}]`),
		})

		commits, listError := fixture.client.ListCommits(context.Background(), testRepository, testBranchConstant)
		require.NoError(testInstance, listError)
		require.Equal(testInstance, []githubapi.Commit{{SHA: testCommitSHAConstant}}, commits)
		require.Len(testInstance, fixture.requests, 1)
		require.Equal(testInstance, testBranchConstant, fixture.requests[0].Query["sha"][0])
	})

	testInstance.Run("empty_branch", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
			testCommitsPathConstant: respondJSON(`[]`),
		})

		commits, listError := fixture.client.ListCommits(context.Background(), testRepository, testBranchConstant)
		require.NoError(testInstance, listError)
		require.Empty(testInstance, commits)
	})

	testInstance.Run("branch_required", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, nil)

		_, listError := fixture.client.ListCommits(context.Background(), testRepository, "")
		require.IsType(testInstance, githubapi.InvalidInputError{}, listError)
	})
}

func TestListWorkflows(testInstance *testing.T) {
	fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
		testWorkflowsPathConstant: respondJSON(`{"total_count":2,"workflows":[
			{"id":4242,"name":"Deploy","path":".github/workflows/deploy.yml"},
			{"id":7,"name":"CI","path":".github/workflows/ci.yml"}
		]}`),
	})

	workflows, listError := fixture.client.ListWorkflows(context.Background(), testRepository)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []githubapi.Workflow{
		{ID: testNumericWorkflowIDConstant, Name: "Deploy", Path: ".github/workflows/deploy.yml"},
		{ID: "7", Name: "CI", Path: ".github/workflows/ci.yml"},
	}, workflows)
}

func TestDispatchWorkflow(testInstance *testing.T) {
	testCases := []struct {
		name         string
		workflowID   string
		expectedPath string
	}{
		{name: "numeric_identifier", workflowID: testNumericWorkflowIDConstant, expectedPath: testDispatchByIDPathConstant},
		{name: "file_name_identifier", workflowID: testWorkflowFileNameConstant, expectedPath: testDispatchByFilePathConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
				testCase.expectedPath: respondStatus(http.StatusNoContent),
			})

			dispatchError := fixture.client.DispatchWorkflow(context.Background(), githubapi.WorkflowDispatchRequest{
				Repository: testRepository,
				WorkflowID: testCase.workflowID,
				Ref:        testBranchConstant,
				Inputs:     map[string]string{"commit_sha": "0123456", "target": "experimental2"},
			})
			require.NoError(testInstance, dispatchError)
			require.Len(testInstance, fixture.requests, 1)
			require.Equal(testInstance, http.MethodPost, fixture.requests[0].Method)

			var payload map[string]any
			require.NoError(testInstance, json.Unmarshal(fixture.requests[0].Body, &payload))
			require.Equal(testInstance, map[string]any{
				"ref":    testBranchConstant,
				"inputs": map[string]any{"commit_sha": "0123456", "target": "experimental2"},
			}, payload)
		})
	}

	testInstance.Run("remote_rejection", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, map[string]http.HandlerFunc{
			testDispatchByIDPathConstant: respondStatus(http.StatusUnprocessableEntity),
		})

		dispatchError := fixture.client.DispatchWorkflow(context.Background(), githubapi.WorkflowDispatchRequest{
			Repository: testRepository,
			WorkflowID: testNumericWorkflowIDConstant,
			Ref:        testBranchConstant,
		})
		require.IsType(testInstance, githubapi.OperationError{}, dispatchError)
		require.Equal(testInstance, http.StatusUnprocessableEntity, dispatchError.(githubapi.OperationError).StatusCode)
	})

	testInstance.Run("workflow_required", func(testInstance *testing.T) {
		fixture := newAPIFixture(testInstance, nil)

		dispatchError := fixture.client.DispatchWorkflow(context.Background(), githubapi.WorkflowDispatchRequest{Repository: testRepository, Ref: testBranchConstant})
		require.IsType(testInstance, githubapi.InvalidInputError{}, dispatchError)
		require.Empty(testInstance, fixture.requests)
	})
}
