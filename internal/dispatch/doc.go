// Package dispatch implements the prdispatch pipeline.
//
// The service resolves the authenticated GitHub user, fetches that user's open
// pull requests on a background task while the environment prompt is shown,
// then asks for a pull request, resolves the latest commit on its branch and
// the workflow to run, and submits exactly one workflow_dispatch request whose
// inputs carry the short commit SHA and the environment label.
package dispatch
