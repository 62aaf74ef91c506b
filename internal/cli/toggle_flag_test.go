package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/sitemapper/internal/utils"
)

func TestExpandToggleArguments(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{
			name:      "copy_with_yes",
			arguments: []string{"scan", "--copy", "yes", "./site"},
			expected:  []string{"scan", "--copy=yes", "./site"},
		},
		{
			name:      "copy_followed_by_root",
			arguments: []string{"scan", "--copy", "./site"},
			expected:  []string{"scan", "--copy", "./site"},
		},
		{
			name:      "no_ignore_with_equals_untouched",
			arguments: []string{"export", "--no-ignore=false", "./site"},
			expected:  []string{"export", "--no-ignore=false", "./site"},
		},
		{
			name:      "persistent_verbose_with_off",
			arguments: []string{"watch", "--verbose", "OFF", "./site"},
			expected:  []string{"watch", "--verbose=OFF", "./site"},
		},
		{
			name:      "config_init_toggles",
			arguments: []string{"config", "init", "--global", "1", "--force", "no"},
			expected:  []string{"config", "init", "--global=1", "--force=no"},
		},
		{
			name:      "value_flag_untouched",
			arguments: []string{"export", "--format", "on", "./site"},
			expected:  []string{"export", "--format", "on", "./site"},
		},
		{
			name:      "after_terminator_untouched",
			arguments: []string{"scan", "--", "--copy", "yes"},
			expected:  []string{"scan", "--", "--copy", "yes"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rootCommand := createRootCommand(&applicationDependencies{logger: zap.NewNop()})
			require.Equal(t, testCase.expected, expandToggleArguments(rootCommand, testCase.arguments))
		})
	}
}

func TestToggleFlagsAcceptLiterals(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		flagName      string
		expected      string
		expectedError string
	}{
		{name: "copy_bare", arguments: []string{"scan", "--copy"}, flagName: copyFlagName, expected: "true"},
		{name: "copy_yes", arguments: []string{"scan", "--copy", "yes"}, flagName: copyFlagName, expected: "true"},
		{name: "no_ignore_false", arguments: []string{"scan", "--no-ignore=false"}, flagName: noIgnoreFlagName, expected: "false"},
		{name: "verbose_on_subcommand", arguments: []string{"export", "--verbose", "on"}, flagName: verboseFlagName, expected: "true"},
		{name: "force_zero", arguments: []string{"config", "init", "--force", "0"}, flagName: forceFlagName, expected: "false"},
		{name: "unset_defaults_off", arguments: []string{"config", "init"}, flagName: globalFlagName, expected: "false"},
		{
			name:          "unknown_literal",
			arguments:     []string{"scan", "--copy=maybe"},
			flagName:      copyFlagName,
			expectedError: `invalid value "maybe" for --copy`,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rootCommand := createRootCommand(&applicationDependencies{logger: zap.NewNop()})
			command, remaining, findError := rootCommand.Find(expandToggleArguments(rootCommand, testCase.arguments))
			require.NoError(t, findError)

			parseError := command.ParseFlags(remaining)
			if testCase.expectedError != "" {
				require.Error(t, parseError)
				require.Contains(t, parseError.Error(), testCase.expectedError)
				return
			}
			require.NoError(t, parseError)
			flag := command.Flags().Lookup(testCase.flagName)
			require.NotNil(t, flag)
			require.Equal(t, testCase.expected, flag.Value.String())
		})
	}
}

func TestScanCopyAcceptsLiteralBeforeRoot(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)

	require.NoError(t, harness.run(context.Background(), "scan", "--copy", "yes", rootPath))

	require.Len(t, harness.copied, 1)
	require.Contains(t, harness.copied[0], "[css] style.css")
}

func TestScanNoIgnoreFalseKeepsIgnoreFile(t *testing.T) {
	harness := newCommandHarness(t)
	rootPath := createSite(t)
	require.NoError(t, os.WriteFile(filepath.Join(rootPath, utils.IgnoreFileName), []byte("assets/\n"), 0o644))

	require.NoError(t, harness.run(context.Background(), "scan", "--no-ignore=false", rootPath))

	require.NotContains(t, harness.stdout.String(), "assets")
	require.Contains(t, harness.stdout.String(), "index.html")
}
