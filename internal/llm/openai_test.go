package llm

import (
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestRequestErrorAPIFailure(t *testing.T) {
	apiErr := &openai.APIError{
		HTTPStatusCode: 429,
		Message:        "Rate limit reached for gpt-4o-mini",
	}

	err := requestError(apiErr, "gpt-4o-mini")

	msg := err.Error()
	if !strings.Contains(msg, completionEndpoint) {
		t.Fatalf("missing endpoint in %q", msg)
	}
	if !strings.Contains(msg, "gpt-4o-mini") {
		t.Fatalf("missing model in %q", msg)
	}
	if !strings.Contains(msg, "status 429") {
		t.Fatalf("missing status in %q", msg)
	}
	if !strings.Contains(msg, "Rate limit reached") {
		t.Fatalf("missing body excerpt in %q", msg)
	}
	if !errors.As(err, new(*openai.APIError)) {
		t.Fatal("original error not preserved in the chain")
	}
}

func TestRequestErrorBodyExcerptTruncated(t *testing.T) {
	apiErr := &openai.APIError{
		HTTPStatusCode: 500,
		Message:        strings.Repeat("x", 1024),
	}

	msg := requestError(apiErr, "gpt-4o-mini").Error()
	if !strings.Contains(msg, strings.Repeat("x", 256)+"...") {
		t.Fatalf("body excerpt not truncated in %q", msg[:64])
	}
}

func TestRequestErrorTransportFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	err := requestError(cause, "gpt-4o-mini")

	if !strings.Contains(err.Error(), completionEndpoint) {
		t.Fatalf("missing endpoint in %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("original error not preserved in the chain")
	}
}

func TestRequestErrorShapeFailure(t *testing.T) {
	err := requestError(ErrEmptyCompletion, "gpt-4o-mini")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatal("shape error not preserved in the chain")
	}
}
