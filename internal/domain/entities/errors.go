package entities

import "errors"

// ErrorKind classifies a domain error for reporting.
type ErrorKind string

const (
	KindParse   ErrorKind = "ParseError"
	KindSchema  ErrorKind = "SchemaError"
	KindIO      ErrorKind = "IoError"
	KindGit     ErrorKind = "GitError"
	KindVersion ErrorKind = "VersionError"
	KindConfig  ErrorKind = "ConfigError"
)

// Error is a sentinel domain error. Components wrap it with fmt.Errorf("%w")
// to add detail, so callers can match it with errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

//nolint:gochecknoglobals // sentinel errors
var (
	ErrMalformedVersion = newError(KindParse, "malformed version")
	ErrInvalidDocument  = newError(KindParse, "invalid manifest document")
	ErrInvalidTemplate  = newError(KindParse, "invalid commit message template")

	ErrMissingVersionField = newError(KindSchema, "missing version field")

	ErrManifestNotFound   = newError(KindIO, "manifest not found")
	ErrManifestUnreadable = newError(KindIO, "manifest unreadable")
	ErrManifestUnwritable = newError(KindIO, "manifest unwritable")

	ErrNotARepository    = newError(KindGit, "not a git repository")
	ErrDirtyWorkingTree  = newError(KindGit, "working tree has uncommitted changes")
	ErrUnbornHead        = newError(KindGit, "HEAD does not point to a commit")
	ErrDetachedHead      = newError(KindGit, "HEAD is detached")
	ErrStageFailed       = newError(KindGit, "staging failed")
	ErrCommitFailed      = newError(KindGit, "commit failed")
	ErrTagExists         = newError(KindGit, "tag already exists")
	ErrTagFailed         = newError(KindGit, "tagging failed")
	ErrInvalidTransition = newError(KindGit, "repository operation out of order")

	ErrNotAnAdvance    = newError(KindVersion, "version is not an advance on the current version")
	ErrInvalidLabel    = newError(KindVersion, "invalid pre-release label")
	ErrVersionOverflow = newError(KindVersion, "version component overflow")

	ErrMissingIdentity = newError(KindConfig, "author name and email are required")
	ErrInvalidSettings = newError(KindConfig, "invalid settings")
)

// KindOf returns the kind of the first domain error in err's chain, or an
// empty kind when err carries none.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}
