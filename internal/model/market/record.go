// Package market defines the marketplace records (users, orders, offers),
// the persistence contract they are stored through, and the seed dataset.
package market

// Collection names, also used as URL path segments and event prefixes.
const (
	CollectionUsers  = "users"
	CollectionOrders = "orders"
	CollectionOffers = "offers"
)

// Record is implemented by every stored entity. Identity is the caller-supplied id.
type Record interface {
	RecordID() int64
	Collection() string
}
