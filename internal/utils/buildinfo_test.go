package utils

import (
	"runtime/debug"
	"testing"
)

func TestRevisionFromSettings(t *testing.T) {
	testCases := []struct {
		name     string
		settings []debug.BuildSetting
		expected string
	}{
		{name: "no_revision", settings: nil, expected: unknownVersion},
		{
			name:     "clean_revision_is_shortened",
			settings: []debug.BuildSetting{{Key: revisionSettingKey, Value: "0123456789abcdef0123"}},
			expected: "0123456789ab",
		},
		{
			name: "modified_tree_is_marked",
			settings: []debug.BuildSetting{
				{Key: revisionSettingKey, Value: "abc123"},
				{Key: modifiedSettingKey, Value: "true"},
			},
			expected: "abc123" + modifiedVersionLabel,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := revisionFromSettings(testCase.settings); actual != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, actual)
			}
		})
	}
}
