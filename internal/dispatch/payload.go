package dispatch

import (
	"encoding/json"
	"strings"

	"github.com/temirov/prdispatch/internal/githubapi"
)

// Dispatch input names declared by the remote workflow.
const (
	CommitSHAInputName = "commit_sha"
	TargetInputName    = "target"
)

// ShortSHALength is the number of leading SHA characters used as the short commit hash.
const ShortSHALength = 7

const (
	branchFieldNameConstant     = "ref"
	workflowFieldNameConstant   = "workflow_id"
	payloadIndentPrefixConstant = ""
	payloadIndentConstant       = "  "
)

// CommitReference pairs a full commit SHA with its short form.
type CommitReference struct {
	FullSHA  string
	ShortSHA string
}

// NewCommitReference derives the short SHA as the first ShortSHALength characters of fullSHA,
// or all of it when shorter.
func NewCommitReference(fullSHA string) CommitReference {
	trimmedSHA := strings.TrimSpace(fullSHA)
	shortSHA := trimmedSHA
	if len(shortSHA) > ShortSHALength {
		shortSHA = shortSHA[:ShortSHALength]
	}
	return CommitReference{FullSHA: trimmedSHA, ShortSHA: shortSHA}
}

// BuildDispatchInputs produces the workflow inputs map holding exactly commit_sha and target.
func BuildDispatchInputs(branch string, commit CommitReference, target string) (map[string]string, error) {
	if len(strings.TrimSpace(branch)) == 0 {
		return nil, InvalidDispatchInputError{FieldName: branchFieldNameConstant}
	}
	if len(strings.TrimSpace(commit.ShortSHA)) == 0 {
		return nil, InvalidDispatchInputError{FieldName: CommitSHAInputName}
	}
	if len(strings.TrimSpace(target)) == 0 {
		return nil, InvalidDispatchInputError{FieldName: TargetInputName}
	}

	return map[string]string{
		CommitSHAInputName: commit.ShortSHA,
		TargetInputName:    target,
	}, nil
}

// BuildDispatchRequest assembles the complete workflow_dispatch request for the branch.
func BuildDispatchRequest(repository githubapi.Repository, workflowID string, branch string, commit CommitReference, target string) (githubapi.WorkflowDispatchRequest, error) {
	if len(strings.TrimSpace(workflowID)) == 0 {
		return githubapi.WorkflowDispatchRequest{}, InvalidDispatchInputError{FieldName: workflowFieldNameConstant}
	}

	inputs, inputsError := BuildDispatchInputs(branch, commit, target)
	if inputsError != nil {
		return githubapi.WorkflowDispatchRequest{}, inputsError
	}

	return githubapi.WorkflowDispatchRequest{
		Repository: repository,
		WorkflowID: strings.TrimSpace(workflowID),
		Ref:        branch,
		Inputs:     inputs,
	}, nil
}

// RenderPayload renders the request body exactly as sent to the dispatch endpoint.
func RenderPayload(request githubapi.WorkflowDispatchRequest) (string, error) {
	payload := struct {
		Ref    string            `json:"ref"`
		Inputs map[string]string `json:"inputs"`
	}{
		Ref:    request.Ref,
		Inputs: request.Inputs,
	}

	encodedPayload, encodingError := json.MarshalIndent(payload, payloadIndentPrefixConstant, payloadIndentConstant)
	if encodingError != nil {
		return "", encodingError
	}
	return string(encodedPayload), nil
}
