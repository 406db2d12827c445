// Package gitrepo parses the repository references accepted on the command line.
package gitrepo
