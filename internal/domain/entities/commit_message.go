package entities

import (
	"fmt"
	"strings"
)

// VersionMarker is the placeholder replaced by the new version.
const VersionMarker = "%s"

// DefaultCommitMessage commits with the bare version as the message.
const DefaultCommitMessage CommitMessageTemplate = VersionMarker

// CommitMessageTemplate is a commit message with exactly one VersionMarker.
// Everything else, including trailing CI directives such as "[skip ci]", is
// opaque text.
type CommitMessageTemplate string

// Validate checks that the template holds exactly one marker.
func (t CommitMessageTemplate) Validate() error {
	if n := strings.Count(string(t), VersionMarker); n != 1 {
		return fmt.Errorf("%w: expected exactly one %q marker, found %d", ErrInvalidTemplate, VersionMarker, n)
	}
	return nil
}

// Render substitutes the version's textual form for the marker.
func (t CommitMessageTemplate) Render(version Version) string {
	return strings.Replace(string(t), VersionMarker, version.String(), 1)
}

// OrDefault returns DefaultCommitMessage when t is empty.
func (t CommitMessageTemplate) OrDefault() CommitMessageTemplate {
	if t == "" {
		return DefaultCommitMessage
	}
	return t
}
