package cache

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Sentinel keys for "all of type" listings.
const (
	AllKey      = "ALL"
	AllUsersKey = "ALL_USERS"
)

// IDKey builds the key of a single entity.
//
// Example:
//
//	IDKey(42) == "42"
func IDKey(id int) string {
	return strconv.Itoa(id)
}

// ChildrenKey builds the key of a parent's child listing, e.g. the menu of a
// restaurant. It shares the format of IDKey; the region disambiguates.
func ChildrenKey(parentID int) string {
	return IDKey(parentID)
}

// PageKey builds the key of an unsorted page.
//
// Example:
//
//	PageKey(0, 10) == "PAGE_0_10"
func PageKey(number, size int) string {
	return fmt.Sprintf("PAGE_%d_%d", number, size)
}

// SortedPageKey builds the key of a page sorted by a field.
//
// Example:
//
//	SortedPageKey(0, 10, "name") == "PAGE_0_10_name"
func SortedPageKey(number, size int, sortBy string) string {
	return fmt.Sprintf("PAGE_%d_%d_%s", number, size, sortBy)
}

// LineItem is one (id, quantity) component of a composite key.
type LineItem struct {
	ID       int
	Quantity int
}

// ItemsHash returns a stable 64-bit xxHash of the ordered items, as 16 hex
// digits. The hash is order-sensitive: the same items in a different order
// produce a different value. It is not cryptographic; distinct inputs may
// collide with probability ~2^-64 per pair.
func ItemsHash(items []LineItem) string {
	d := xxhash.New()
	for _, it := range items {
		// Writes to a Digest never fail
		_, _ = fmt.Fprintf(d, "%d:%d;", it.ID, it.Quantity)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// BillKey builds the bill signature of an order request.
//
// Format: <restaurantId>-<itemsHash>
func BillKey(restaurantID int, items []LineItem) string {
	return IDKey(restaurantID) + "-" + ItemsHash(items)
}
