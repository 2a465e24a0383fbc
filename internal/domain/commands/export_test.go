package commands

import "time"

// SetClock replaces the clock used for commit and tag timestamps.
func SetClock(command *ReleaseCommand, now func() time.Time) {
	command.now = now
}
