package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	httpsProtocolPrefixConstant         = "https://"
	gitUserPrefixConstant               = "git@"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	referenceParseErrorTemplateConstant = "%q: %s"
	invalidReferenceMessageConstant     = "expected owner/name or a GitHub remote URL"
	requiredValueMessageConstant        = "value required"
)

// RepositoryReference identifies a repository by owner and name. Host is empty for the bare owner/name form.
type RepositoryReference struct {
	Host  string
	Owner string
	Name  string
}

// ReferenceParseError indicates a repository reference could not be parsed.
type ReferenceParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError ReferenceParseError) Error() string {
	return fmt.Sprintf(referenceParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRepositoryReference accepts "owner/name", "https://host/owner/name[.git]",
// "git@host:owner/name[.git]", and "ssh://git@host/owner/name[.git]".
func ParseRepositoryReference(value string) (RepositoryReference, error) {
	trimmedValue := strings.TrimSpace(value)
	switch {
	case len(trimmedValue) == 0:
		return RepositoryReference{}, ReferenceParseError{Input: value, Message: requiredValueMessageConstant}
	case strings.HasPrefix(trimmedValue, sshProtocolPrefixConstant):
		return parseSSHReference(value, strings.TrimPrefix(trimmedValue, sshProtocolPrefixConstant))
	case strings.HasPrefix(trimmedValue, gitUserPrefixConstant):
		return parseSSHReference(value, trimmedValue)
	case strings.HasPrefix(trimmedValue, httpsProtocolPrefixConstant):
		return parseHTTPSReference(value, strings.TrimPrefix(trimmedValue, httpsProtocolPrefixConstant))
	case strings.Contains(trimmedValue, sshPathDelimiterConstant):
		return RepositoryReference{}, ReferenceParseError{Input: value, Message: invalidReferenceMessageConstant}
	}

	owner, name, splitError := splitOwnerAndName(value, trimmedValue)
	if splitError != nil {
		return RepositoryReference{}, splitError
	}
	return RepositoryReference{Owner: owner, Name: name}, nil
}

func parseSSHReference(input string, remote string) (RepositoryReference, error) {
	userSplitIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return RepositoryReference{}, ReferenceParseError{Input: input, Message: invalidReferenceMessageConstant}
	}

	hostAndPath := remote[userSplitIndex+1:]
	separatorIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if separatorIndex == -1 {
		separatorIndex = strings.Index(hostAndPath, pathSeparatorConstant)
	}
	if separatorIndex <= 0 {
		return RepositoryReference{}, ReferenceParseError{Input: input, Message: invalidReferenceMessageConstant}
	}

	owner, name, splitError := splitOwnerAndName(input, hostAndPath[separatorIndex+1:])
	if splitError != nil {
		return RepositoryReference{}, splitError
	}
	return RepositoryReference{Host: hostAndPath[:separatorIndex], Owner: owner, Name: name}, nil
}

func parseHTTPSReference(input string, remote string) (RepositoryReference, error) {
	hostSplitIndex := strings.Index(remote, pathSeparatorConstant)
	if hostSplitIndex <= 0 {
		return RepositoryReference{}, ReferenceParseError{Input: input, Message: invalidReferenceMessageConstant}
	}

	owner, name, splitError := splitOwnerAndName(input, strings.TrimSuffix(remote[hostSplitIndex+1:], pathSeparatorConstant))
	if splitError != nil {
		return RepositoryReference{}, splitError
	}
	return RepositoryReference{Host: remote[:hostSplitIndex], Owner: owner, Name: name}, nil
}

func splitOwnerAndName(input string, path string) (string, string, error) {
	segments := strings.Split(path, pathSeparatorConstant)
	if len(segments) != 2 {
		return "", "", ReferenceParseError{Input: input, Message: invalidReferenceMessageConstant}
	}

	owner := strings.TrimSpace(segments[0])
	name := strings.TrimSuffix(strings.TrimSpace(segments[1]), gitSuffixConstant)
	if len(owner) == 0 || len(name) == 0 {
		return "", "", ReferenceParseError{Input: input, Message: invalidReferenceMessageConstant}
	}
	return owner, name, nil
}
