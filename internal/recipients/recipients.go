// Package recipients resolves the destination mailbox for a category reference.
package recipients

import "github.com/JaimeStill/docroute/internal/categories"

// Resolve returns the receiver email for ref within snapshot. The Other
// sentinel and names missing from the snapshot are unset, reported by ok
// being false.
func Resolve(ref categories.Ref, snapshot categories.Snapshot) (email string, ok bool) {
	if ref.IsOther() {
		return "", false
	}
	c, found := snapshot.Lookup(ref.Name())
	if !found {
		return "", false
	}
	return c.ReceiverEmail, true
}
