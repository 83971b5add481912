package auth

import "github.com/userpanel/adminserver/types"

// Authorize reports whether the user may perform an action restricted
// to the named group. Pure predicate over the user's live group set;
// the required name is matched exactly and case-sensitively.
func Authorize(user types.User, requiredGroup string) bool {
	return user.InGroup(requiredGroup)
}
