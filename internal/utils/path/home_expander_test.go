package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/prdispatch/internal/utils/path"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	homeDirectory := filepath.Join(string(filepath.Separator), "home", "octocat")

	testCases := []struct {
		name         string
		candidate    string
		providerErr  error
		expectedPath string
	}{
		{name: "bare_tilde", candidate: "~", expectedPath: homeDirectory},
		{name: "tilde_prefix", candidate: "~/.config/prdispatch/config.yaml", expectedPath: filepath.Join(homeDirectory, ".config", "prdispatch", "config.yaml")},
		{name: "absolute", candidate: "/etc/prdispatch.yaml", expectedPath: "/etc/prdispatch.yaml"},
		{name: "relative", candidate: " .env ", expectedPath: ".env"},
		{name: "other_user", candidate: "~hubot/.env", expectedPath: "~hubot/.env"},
		{name: "empty", candidate: "", expectedPath: ""},
		{name: "provider_failure", candidate: "~/.env", providerErr: errors.New("no home"), expectedPath: "~/.env"},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
				if testCase.providerErr != nil {
					return "", testCase.providerErr
				}
				return homeDirectory, nil
			})
			require.Equal(subTest, testCase.expectedPath, expander.Expand(testCase.candidate))
		})
	}
}
