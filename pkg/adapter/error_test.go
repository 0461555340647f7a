package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	syntaxErr := json.Unmarshal([]byte("{"), &struct{}{})

	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, OutcomeOK},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), OutcomeTimeout},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, OutcomeUnreachable},
		{"dns", &net.DNSError{Err: "no such host", Name: "ollama.invalid"}, OutcomeUnreachable},
		{"malformed", fmt.Errorf("x: %w", ErrMalformedResponse), OutcomeMalformed},
		{"truncated", io.ErrUnexpectedEOF, OutcomeMalformed},
		{"bad json", fmt.Errorf("unmarshal: %w", syntaxErr), OutcomeMalformed},
		{"server", &AdapterError{Status: 500, Err: errors.New("boom")}, OutcomeBackendError},
		{"opaque", errors.New("something else"), OutcomeBackendError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"timeout", context.DeadlineExceeded, true},
		{"rate limited", &AdapterError{Status: 429}, true},
		{"server error", &AdapterError{Status: 503}, true},
		{"temporary flag", &AdapterError{Status: 529, Temporary: true}, true},
		{"not found", &AdapterError{Status: 404, Err: ErrModelNotFound}, false},
		{"malformed", ErrMalformedResponse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestFailureSetsStatus(t *testing.T) {
	r := Failure("llama3:8b", &AdapterError{Status: 502, Err: errors.New("bad gateway")})
	assert.False(t, r.OK())
	assert.Equal(t, OutcomeBackendError, r.Outcome)
	assert.Equal(t, 502, r.Status)
	assert.Equal(t, "llama3:8b", r.Model)
	assert.Equal(t, "backend_error", r.Outcome.String())
}

func TestSuccessTrims(t *testing.T) {
	r := Success("m", "  hi \n", nil)
	assert.True(t, r.OK())
	assert.Equal(t, "hi", r.Text)
}
