package lock

import (
	"errors"
	"log"

	chlock "github.com/swanny246/TuroApp/internal/lock"
)

const missingPermissions = ":warning: I am missing permissions to change who can access this channel. I need **Manage Roles** (or **Manage Channel**) here."

// describeError turns an engine error into a reply for the invoking user.
func describeError(op string, err error) string {
	switch {
	case errors.Is(err, chlock.ErrPermissionDenied):
		return missingPermissions
	case errors.Is(err, chlock.ErrConfigWrite):
		return ":warning: The setting is active, but I could not save it. It will be lost when I restart."
	case errors.Is(err, chlock.ErrInvalidPolicyRequest):
		return err.Error()
	}
	log.Printf("[ERR] %s failed: %v", op, err)
	return "Something went wrong. Vague, I know."
}
