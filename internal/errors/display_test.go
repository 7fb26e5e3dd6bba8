package errors

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestFprintError(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name: "Network Error",
			err:  NetworkError(fmt.Errorf("dial tcp: connection refused")),
			contains: []string{
				MessageNetwork,
				"connection refused",
				"Check that the backend is reachable",
				"apidrift health",
			},
		},
		{
			name: "Backend Error",
			err:  BackendError(404, "Collection not found"),
			contains: []string{
				"Collection not found",
				"404",
			},
		},
		{
			name: "Authentication Error",
			err:  AuthenticationError(),
			contains: []string{
				MessageSessionExpired,
				"apidrift auth login",
			},
		},
		{
			name:     "Plain Error",
			err:      fmt.Errorf("boom"),
			contains: []string{"Error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FprintError(&buf, tt.err)

			output := buf.String()
			for _, expected := range tt.contains {
				assert.Contains(t, output, expected)
			}
		})
	}
}

func TestFormatErrorWithContext(t *testing.T) {
	err := BackendError(500, "").
		WithCause("upstream timeout").
		WithSolutions("Retry in a minute")

	output := FormatErrorWithContext(err, map[string]string{"collection": "c1"})

	assert.Contains(t, output, "Error: "+MessageBackend)
	assert.Contains(t, output, "Type: Backend")
	assert.Contains(t, output, "Status: 500")
	assert.Contains(t, output, "Cause: upstream timeout")
	assert.Contains(t, output, "collection: c1")
	assert.Contains(t, output, "1. Retry in a minute")
}

func TestDriftError_Format(t *testing.T) {
	err := RateLimitError()

	assert.Equal(t, MessageRateLimited, fmt.Sprintf("%s", err))
	assert.Equal(t, "[RateLimit/429] "+MessageRateLimited, fmt.Sprintf("%+v", err))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "network", err: NetworkError(fmt.Errorf("timeout")), want: MessageNetwork},
		{name: "backend passes message", err: BackendError(400, "Email already registered"), want: "Email already registered"},
		{name: "backend empty falls back", err: BackendError(502, "  "), want: MessageBackend},
		{name: "validation", err: ValidationError(MessageInvalidFile), want: MessageInvalidFile},
		{name: "auth is silent", err: AuthenticationError(), want: ""},
		{name: "wrapped", err: fmt.Errorf("load: %w", RateLimitError()), want: MessageRateLimited},
		{name: "unknown", err: fmt.Errorf("boom"), want: MessageBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{AuthenticationError(), 77},
		{ConfigurationError("bad", nil), 78},
		{FileSystemError("/tmp/x", nil), 66},
		{NetworkError(nil), 69},
		{RateLimitError(), 69},
		{ValidationError("bad"), 65},
		{BackendError(500, ""), 1},
		{fmt.Errorf("plain"), 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetExitCode(tt.err), "%+v", tt.err)
	}
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", AuthenticationError())
	assert.True(t, IsType(err, ErrorTypeAuthentication))
	assert.False(t, IsType(err, ErrorTypeNetwork))
	assert.True(t, IsUserError(err))
	assert.False(t, IsUserError(fmt.Errorf("plain")))
}
