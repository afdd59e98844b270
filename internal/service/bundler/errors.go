package bundler

import (
	"errors"
	"fmt"

	"github.com/flipcat/catalog-bundler/internal/sandbox"
)

// Kind classifies a pipeline failure so callers can map it to an exit
// status or a report section without string matching.
type Kind int

// Failure classes, in roughly the order the pipeline can hit them.
const (
	// KindInput covers unreadable or malformed author inputs.
	KindInput Kind = iota + 1
	// KindTraversal covers paths escaping the working sandbox.
	KindTraversal
	// KindExternalTool covers build tool invocation failures.
	KindExternalTool
	// KindReconciliation covers metadata conflicts between the manifest
	// and the build declaration.
	KindReconciliation
	// KindContent covers text validation failures (values, markdown).
	KindContent
	// KindAsset covers icon and screenshot processing failures.
	KindAsset
)

// String returns a short label for the failure class.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTraversal:
		return "traversal"
	case KindExternalTool:
		return "external tool"
	case KindReconciliation:
		return "reconciliation"
	case KindContent:
		return "content"
	case KindAsset:
		return "asset"
	default:
		return "unknown"
	}
}

// Error wraps a stage failure with its class.
type Error struct {
	// Kind is the failure class.
	Kind Kind
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

// Unwrap exposes the cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// classify wraps err with the given class. Nil passes through, and so does
// an error that already carries a class: the leaf classification wins, so a
// traversal failure inside a stage keeps its kind through the outer wrap.
func classify(kind Kind, err error) error {
	if err == nil {
		return nil
	}

	var classed *Error
	if errors.As(err, &classed) {
		return err
	}

	return &Error{Kind: kind, Err: err}
}

// classifyPath classifies a path guard failure: a sandbox escape is always
// KindTraversal, anything else (a missing file, usually) takes the stage's
// own class.
func classifyPath(fallback Kind, err error) error {
	if errors.Is(err, sandbox.ErrPathTraversal) {
		return classify(KindTraversal, err)
	}

	return classify(fallback, err)
}
