// Package githubapi wraps the GitHub REST API for prdispatch.
//
// It layers small typed request and response structures over go-github for
// identity lookup, pull request search, commit and workflow listing, and
// workflow dispatch. Every call is a single round trip; failures surface as
// OperationError values carrying the HTTP status so callers can tell
// credential problems apart from other remote failures.
package githubapi
