package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	environmentLabelTemplateConstant      = "%s%d"
	environmentNotNumberMessageConstant   = "Environment must be a number"
	environmentOutOfRangeTemplateConstant = "Environment must be between %d and %d"
	environmentIndexOutOfRangeTemplate    = "environment index %d out of range"
	minimumEnvironmentNumberConstant      = 1
)

// EnvironmentCatalog enumerates the numbered deployment environments, labelled
// "<Prefix>1" through "<Prefix><Count>".
type EnvironmentCatalog struct {
	Prefix string
	Count  int
}

// Labels lists every environment label in ascending order.
func (catalog EnvironmentCatalog) Labels() []string {
	labels := make([]string, 0, catalog.Count)
	for environmentNumber := minimumEnvironmentNumberConstant; environmentNumber <= catalog.Count; environmentNumber++ {
		labels = append(labels, fmt.Sprintf(environmentLabelTemplateConstant, catalog.Prefix, environmentNumber))
	}
	return labels
}

// Label maps a zero-based selection index to the environment label sent as the target input.
func (catalog EnvironmentCatalog) Label(index int) (string, error) {
	if index < 0 || index >= catalog.Count {
		return "", fmt.Errorf(environmentIndexOutOfRangeTemplate, index)
	}
	return fmt.Sprintf(environmentLabelTemplateConstant, catalog.Prefix, index+minimumEnvironmentNumberConstant), nil
}

// ParseArgument validates a one-based environment number and returns its zero-based index.
func (catalog EnvironmentCatalog) ParseArgument(argument string) (int, error) {
	trimmedArgument := strings.TrimSpace(argument)
	environmentNumber, parseError := strconv.Atoi(trimmedArgument)
	if parseError != nil {
		return 0, EnvironmentArgumentError{Argument: argument, Message: environmentNotNumberMessageConstant}
	}

	if environmentNumber < minimumEnvironmentNumberConstant || environmentNumber > catalog.Count {
		return 0, EnvironmentArgumentError{
			Argument: argument,
			Message:  fmt.Sprintf(environmentOutOfRangeTemplateConstant, minimumEnvironmentNumberConstant, catalog.Count),
		}
	}

	return environmentNumber - minimumEnvironmentNumberConstant, nil
}
