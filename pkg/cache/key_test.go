package cache

import (
	"strings"
	"testing"
)

func TestKeyBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "entity id", got: IDKey(42), want: "42"},
		{name: "children of parent", got: ChildrenKey(7), want: "7"},
		{name: "page", got: PageKey(0, 10), want: "PAGE_0_10"},
		{name: "sorted page", got: SortedPageKey(2, 5, "name"), want: "PAGE_2_5_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("key = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBillKey_Format(t *testing.T) {
	key := BillKey(3, []LineItem{{ID: 1, Quantity: 2}})

	prefix, hash, ok := strings.Cut(key, "-")
	if !ok {
		t.Fatalf("BillKey() = %q, want <restaurant>-<hash>", key)
	}
	if prefix != "3" {
		t.Errorf("restaurant component = %q, want %q", prefix, "3")
	}
	if len(hash) != 16 {
		t.Errorf("hash component = %q, want 16 hex digits", hash)
	}
}

// TestBillKey_Determinism ensures identical requests always share a key.
func TestBillKey_Determinism(t *testing.T) {
	items := []LineItem{{ID: 1, Quantity: 2}, {ID: 5, Quantity: 1}, {ID: 9, Quantity: 4}}

	first := BillKey(3, items)
	for i := 0; i < 10; i++ {
		// Fresh slice each time: the key depends on values, not identity
		again := append([]LineItem(nil), items...)
		if got := BillKey(3, again); got != first {
			t.Errorf("BillKey() run %d = %q, want %q (not deterministic)", i, got, first)
		}
	}
}

func TestBillKey_Distinct(t *testing.T) {
	base := []LineItem{{ID: 1, Quantity: 2}, {ID: 5, Quantity: 1}}

	tests := []struct {
		name         string
		restaurantID int
		items        []LineItem
	}{
		{name: "different restaurant", restaurantID: 4, items: base},
		{name: "different quantity", restaurantID: 3, items: []LineItem{{ID: 1, Quantity: 3}, {ID: 5, Quantity: 1}}},
		{name: "extra item", restaurantID: 3, items: append(append([]LineItem(nil), base...), LineItem{ID: 6, Quantity: 1})},
		// Reordering changes the key; totals are unaffected
		{name: "reordered items", restaurantID: 3, items: []LineItem{{ID: 5, Quantity: 1}, {ID: 1, Quantity: 2}}},
		{name: "different food", restaurantID: 3, items: []LineItem{{ID: 11, Quantity: 2}, {ID: 5, Quantity: 1}}},
	}

	want := BillKey(3, base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BillKey(tt.restaurantID, tt.items); got == want {
				t.Errorf("BillKey() = %q, collides with base key", got)
			}
		})
	}
}
