package upstream

import (
	"errors"
	"strings"
	"testing"
)

func TestError_payloadTakesPrecedence(t *testing.T) {
	err := &Error{
		Kind:    KindConverter,
		Op:      "start converter",
		Status:  404,
		Payload: []byte(`{"message":"converter not found"}`),
		Err:     errors.New("transport noise"),
	}
	msg := err.Error()
	if !strings.Contains(msg, "converter not found") {
		t.Fatalf("message %q should contain the payload", msg)
	}
	if strings.Contains(msg, "transport noise") {
		t.Fatalf("message %q should not fall back to the transport error", msg)
	}
	if !strings.Contains(msg, "404") {
		t.Fatalf("message %q should include the upstream status", msg)
	}
}

func TestError_transportFallback(t *testing.T) {
	err := &Error{Kind: KindAuth, Op: "refresh token", Err: errors.New("dial tcp: refused")}
	if !strings.Contains(err.Error(), "dial tcp: refused") {
		t.Fatalf("message %q should carry the transport error", err.Error())
	}
	if err.HTTPStatus() != 500 {
		t.Fatalf("HTTPStatus() = %d, want 500 when no upstream status", err.HTTPStatus())
	}
}

func TestError_httpStatusPassthrough(t *testing.T) {
	err := &Error{Kind: KindResource, Op: "create broadcast", Status: 403}
	if err.HTTPStatus() != 403 {
		t.Fatalf("HTTPStatus() = %d, want 403", err.HTTPStatus())
	}
}

func TestError_unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &Error{Kind: KindResource, Op: "bind", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("errors.Is should reach the wrapped transport error")
	}
}
