// Package associations stores which remote document currently backs each
// example. Entries are hints: the negotiator re-validates them against the
// document engine before use, so losing or racing on them is harmless.
package associations

import "context"

// Repository maps an example name to the last document id known to be valid.
type Repository interface {
	// Get returns ok=false when nothing is cached for example.
	Get(ctx context.Context, example string) (documentID string, ok bool, err error)

	// Set records documentID for example. Concurrent writers race; the last
	// one wins.
	Set(ctx context.Context, example, documentID string) error

	// Delete forgets example. Deleting an absent entry is not an error.
	Delete(ctx context.Context, example string) error
}
