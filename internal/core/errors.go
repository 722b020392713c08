package core

import (
	stderrors "errors"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds. Every failure surfaced by a backend matches exactly one of
// these through errors.Is.
var (
	ErrInstallationUnavailable  = stderrors.New("installation unavailable")
	ErrRemoteListingFailed      = stderrors.New("remote listing failed")
	ErrRefEnumerationFailed     = stderrors.New("ref enumeration failed")
	ErrRefNotFound              = stderrors.New("ref not found")
	ErrMetadataUnavailable      = stderrors.New("metadata unavailable")
	ErrDecompressionFailed      = stderrors.New("decompression failed")
	ErrMetadataParseFailed      = stderrors.New("metadata parse failed")
	ErrMetadataConversionFailed = stderrors.New("metadata conversion failed")
)

var kinds = []error{
	ErrInstallationUnavailable,
	ErrRemoteListingFailed,
	ErrRefEnumerationFailed,
	ErrRefNotFound,
	ErrMetadataUnavailable,
	ErrDecompressionFailed,
	ErrMetadataParseFailed,
	ErrMetadataConversionFailed,
}

// BackendError is a classified failure from a package backend
type BackendError struct {
	Kind    error
	Backend string
	Op      string
	Ref     string
	Err     error
}

// NewError classifies err under kind. A stack trace is attached to the
// underlying error so zerolog can print it.
func NewError(kind error, backend, op, ref string, err error) *BackendError {
	if err != nil {
		err = errors.WithStack(err)
	}
	return &BackendError{
		Kind:    kind,
		Backend: backend,
		Op:      op,
		Ref:     ref,
		Err:     err,
	}
}

func (e *BackendError) Error() string {
	var parts []string
	if e.Backend != "" {
		parts = append(parts, e.Backend)
	}
	switch {
	case e.Op != "" && e.Ref != "":
		parts = append(parts, e.Op+" "+e.Ref)
	case e.Op != "":
		parts = append(parts, e.Op)
	}
	// skip the kind when the cause already names it
	if e.Err == nil || !stderrors.Is(e.Err, e.Kind) {
		parts = append(parts, e.Kind.Error())
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

// Is matches the error kind
func (e *BackendError) Is(target error) bool {
	return target == e.Kind
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// StackTrace exposes the stack captured in NewError
func (e *BackendError) StackTrace() errors.StackTrace {
	var st interface{ StackTrace() errors.StackTrace }
	if stderrors.As(e.Err, &st) {
		return st.StackTrace()
	}
	return nil
}

// KindOf returns the error kind of err, or nil when err is not classified
func KindOf(err error) error {
	for _, kind := range kinds {
		if stderrors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// ExitCode maps an error to the CLI exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch KindOf(err) {
	case ErrInstallationUnavailable, ErrRemoteListingFailed, ErrRefEnumerationFailed:
		return ExitBackendUnavailable
	case ErrRefNotFound:
		return ExitNotFound
	case ErrMetadataUnavailable:
		return ExitMetadataUnavailable
	case ErrDecompressionFailed, ErrMetadataParseFailed, ErrMetadataConversionFailed:
		return ExitMetadataInvalid
	default:
		return ExitGeneral
	}
}
