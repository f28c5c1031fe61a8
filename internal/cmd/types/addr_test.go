package types

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestListenAddr(t *testing.T) {
	type testCase struct {
		name        string
		input       string
		expectedErr string
		expected    ListenAddr
		expectedStr string
	}

	run := func(t *testing.T, tc testCase) {
		addr := ListenAddr{}
		err := addr.Set(tc.input)

		if tc.expectedErr != "" {
			assert.ErrorContains(t, err, tc.expectedErr)
			return
		}
		assert.NilError(t, err)
		assert.DeepEqual(t, addr, tc.expected)
		assert.Equal(t, addr.String(), tc.expectedStr)
	}

	testCases := []testCase{
		{
			name:        "empty",
			input:       "",
			expected:    ListenAddr{},
			expectedStr: "",
		},
		{
			name:        "port only",
			input:       "9090",
			expected:    ListenAddr{Port: 9090},
			expectedStr: ":9090",
		},
		{
			name:        "port with colon",
			input:       ":9090",
			expected:    ListenAddr{Port: 9090},
			expectedStr: ":9090",
		},
		{
			name:        "ipv4 with port",
			input:       "127.0.0.1:9100",
			expected:    ListenAddr{Host: "127.0.0.1", Port: 9100},
			expectedStr: "127.0.0.1:9100",
		},
		{
			name:        "ipv6 address with port",
			input:       "[::1]:8080",
			expected:    ListenAddr{Host: "::1", Port: 8080},
			expectedStr: "[::1]:8080",
		},
		{
			name:        "missing port",
			input:       "localhost",
			expectedErr: "missing port in address",
		},
		{
			name:        "invalid port",
			input:       "localhost:dog",
			expectedErr: `port "dog" must be a number between 0 and 65535`,
		},
		{
			name:        "port out of range",
			input:       "70000",
			expectedErr: `port "70000" must be a number between 0 and 65535`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run(t, tc)
		})
	}
}
