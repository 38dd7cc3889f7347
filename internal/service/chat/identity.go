package chat

import (
	"errors"
	"strings"
)

// ErrMissingIdentity rejects connections that claim no display name. It is
// the only hard failure in the chat core; everything else degrades to a
// silent no-op.
var ErrMissingIdentity = errors.New("missing identity")

// Admit validates a connection's claimed username at connect time. No
// uniqueness check is performed across live sessions: two connections may
// share a name, since presence is keyed by connection rather than by name.
func Admit(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrMissingIdentity
	}
	return nil
}
