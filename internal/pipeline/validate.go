package pipeline

import "regexp"

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// Validate checks the shape of a raw video id. It performs no I/O.
func Validate(rawID string) (string, error) {
	if !videoIDPattern.MatchString(rawID) {
		return "", &Error{Kind: KindInvalidIdentifier, State: StateValidating}
	}
	return rawID, nil
}
