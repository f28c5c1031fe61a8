package internal

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestFullVersion(t *testing.T) {
	type testCase struct {
		version    string
		prerelease string
		metadata   string
		expected   string
	}

	original := [3]string{Version, Prerelease, Metadata}
	t.Cleanup(func() {
		Version, Prerelease, Metadata = original[0], original[1], original[2]
	})

	testCases := []testCase{
		{version: "0.3.0", expected: "0.3.0"},
		{version: "0.3.0", prerelease: "rc.1", expected: "0.3.0-rc.1"},
		{version: "0.3.0", metadata: "dev", expected: "0.3.1+dev"},
		{version: "0.3.0", metadata: "abc123", expected: "0.3.0+abc123"},
		{version: "1.2.9", prerelease: "beta", metadata: "dev", expected: "1.2.10-beta+dev"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			Version = tc.version
			Prerelease = tc.prerelease
			Metadata = tc.metadata
			assert.Equal(t, FullVersion(), tc.expected)
		})
	}
}
