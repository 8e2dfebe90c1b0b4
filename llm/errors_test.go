package llm

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"authentication", &AuthenticationError{}, false},
		{"invalid request", &InvalidRequestError{}, false},
		{"context length", &ContextLengthError{}, false},
		{"content filter", &ContentFilterError{}, false},
		{"configuration", &ConfigurationError{}, false},
		{"rate limit", &RateLimitError{}, true},
		{"server", &ServerError{}, true},
		{"network", &NetworkError{}, true},
		{"timeout", &RequestTimeoutError{}, true},
		{"provider retryable", &ProviderError{Retryable: true}, true},
		{"provider non-retryable", &ProviderError{Retryable: false}, false},
		{"unknown", errors.New("something odd"), true},
	}

	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.retryable {
			t.Errorf("%s: expected retryable=%v, got %v", tc.name, tc.retryable, got)
		}
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ClientError{Message: "request failed", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("ClientError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("message should include the cause: %v", err)
	}
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{
		ClientError: ClientError{Message: "quota exceeded"},
		Provider:    "openai",
		StatusCode:  429,
		Retryable:   true,
	}
	msg := err.Error()
	for _, want := range []string{"openai", "quota exceeded", "429"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q: %s", want, msg)
		}
	}
}

func TestGollmErrorTranslation(t *testing.T) {
	c := &GollmClient{provider: "anthropic"}

	cases := []struct {
		raw  string
		want any
	}{
		{"received 401 unauthorized", &AuthenticationError{}},
		{"rate limit exceeded, try later", &RateLimitError{}},
		{"prompt exceeds context length", &ContextLengthError{}},
		{"HTTP 400 invalid request body", &InvalidRequestError{}},
		{"HTTP 500 internal server error", &ServerError{}},
		{"blocked by content filter", &ContentFilterError{}},
		{"request timeout after 30s", &RequestTimeoutError{}},
	}

	for _, tc := range cases {
		got := c.translateError(fmt.Errorf("%s", tc.raw))
		if fmt.Sprintf("%T", got) != fmt.Sprintf("%T", tc.want) {
			t.Errorf("%q: expected %T, got %T", tc.raw, tc.want, got)
		}
	}
}

func TestGollmErrorTranslationDefault(t *testing.T) {
	c := &GollmClient{provider: "anthropic"}

	got := c.translateError(errors.New("some novel failure"))
	perr, ok := got.(*ProviderError)
	if !ok {
		t.Fatalf("expected generic ProviderError, got %T", got)
	}
	if !perr.Retryable {
		t.Error("unclassified provider errors default to retryable")
	}
	if perr.Provider != "anthropic" {
		t.Errorf("expected provider carried over, got %q", perr.Provider)
	}
}
