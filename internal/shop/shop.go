package shop

import "errors"

// ErrUnknownShop is returned when a shop id is not in the directory.
var ErrUnknownShop = errors.New("unknown shop id")

// ID identifies a shop. The set of shops is closed: reference data is
// compiled in, never persisted or mutated.
type ID string

const (
	Kapish ID = "kapish"
	Sunny  ID = "sunny"
)

// Info is the static descriptor for a shop. Bills snapshot these fields at
// creation time so later edits to the directory never alter history.
type Info struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

var directory = map[ID]Info{
	Kapish: {
		ID:      Kapish,
		Name:    "Kapish Photo Frame",
		Address: "123 Frame St, Market City",
		Contact: "+91 1234567890",
	},
	Sunny: {
		ID:      Sunny,
		Name:    "Sunny Watch Center",
		Address: "456 Watch Ave, Market City",
		Contact: "+91 9876543210",
	},
}

// order fixes the listing order for All.
var order = []ID{Kapish, Sunny}

// Lookup resolves a shop id. Unknown ids are a configuration error, not
// silently-undefined data.
func Lookup(id string) (Info, error) {
	info, ok := directory[ID(id)]
	if !ok {
		return Info{}, ErrUnknownShop
	}
	return info, nil
}

// All returns every shop descriptor in a stable order.
func All() []Info {
	result := make([]Info, 0, len(order))
	for _, id := range order {
		result = append(result, directory[id])
	}
	return result
}

// IsValid reports whether id names a known shop.
func IsValid(id string) bool {
	_, ok := directory[ID(id)]
	return ok
}
