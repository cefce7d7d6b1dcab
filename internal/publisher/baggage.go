package publisher

import (
	"strings"
)

// UpsertBaggage sets key=value in a W3C baggage string, replacing an
// existing item with the same key and preserving the others in order.
func UpsertBaggage(baggage, key, value string) string {
	if baggage == "" {
		return key + "=" + value
	}

	parts := make([]string, 0, 4)
	found := false
	for _, item := range strings.Split(baggage, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		k, _, ok := strings.Cut(item, "=")
		if ok && strings.TrimSpace(k) == key {
			parts = append(parts, key+"="+value)
			found = true
			continue
		}
		parts = append(parts, item)
	}

	if !found {
		parts = append(parts, key+"="+value)
	}

	return strings.Join(parts, ",")
}
