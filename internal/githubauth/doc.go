// Package githubauth turns a GitHub personal access token into an
// authenticated HTTP client suitable for the REST API.
package githubauth
