package stats

import (
	"strings"

	"github.com/billkhata/api/internal/billing"
)

// ShopFilterAll disables shop filtering.
const ShopFilterAll = "all"

// Filter narrows history to bills matching the shop filter and search term.
// The shop filter is applied first (exact shopId match, or pass-through for
// "all"). A non-empty search term matches a bill when any of these hold:
// case-insensitive substring of the customer name, substring of the phone
// number, or substring of the last 6 characters of the bill id. Relative
// order is preserved; with no filters the input is returned unchanged.
// Pure function, cheap enough to run on every keystroke.
func Filter(history []billing.Bill, searchTerm, shopFilter string) []billing.Bill {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	allShops := shopFilter == "" || shopFilter == ShopFilterAll

	if term == "" && allShops {
		return history
	}

	result := make([]billing.Bill, 0, len(history))
	for _, b := range history {
		if !allShops && string(b.ShopID) != shopFilter {
			continue
		}
		if term != "" && !matches(b, term) {
			continue
		}
		result = append(result, b)
	}
	return result
}

func matches(b billing.Bill, term string) bool {
	return strings.Contains(strings.ToLower(b.CustomerName), term) ||
		strings.Contains(b.CustomerPhone, term) ||
		strings.Contains(b.ShortID(), term)
}
