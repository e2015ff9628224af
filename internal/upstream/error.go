package upstream

import (
	"fmt"
	"strings"
)

// Kind classifies a collaborator failure.
type Kind int

const (
	// KindAuth means the collaborator rejected our credentials or token.
	KindAuth Kind = iota
	// KindResource means resource creation or binding was rejected.
	KindResource
	// KindIngestMissing means the collaborator succeeded but returned
	// incomplete ingest details.
	KindIngestMissing
	// KindConverter means a relay converter start/stop was rejected.
	KindConverter
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindResource:
		return "resource"
	case KindIngestMissing:
		return "ingest_missing"
	case KindConverter:
		return "converter"
	default:
		return "unknown"
	}
}

// Error carries a collaborator failure across layers. Status and Payload
// hold the collaborator's own HTTP status and response body when the call
// got that far; Err holds the transport-level error otherwise. The HTTP
// boundary renders Status/Payload unmodified when present.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Payload []byte
	Err     error
}

// Error prefers the collaborator payload over the transport message.
func (e *Error) Error() string {
	var detail string
	switch {
	case len(e.Payload) > 0:
		detail = strings.TrimSpace(string(e.Payload))
	case e.Err != nil:
		detail = e.Err.Error()
	default:
		detail = "upstream failure"
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, detail)
	}
	return fmt.Sprintf("%s: %s", e.Op, detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status the HTTP boundary should surface:
// the collaborator's own status when present, else 500.
func (e *Error) HTTPStatus() int {
	if e.Status > 0 {
		return e.Status
	}
	return 500
}
