package routing

import (
	"strings"

	"mqsieve/internal/constants"
)

// ExtractRoutingKey derives the routing key from message headers. The
// explicit signadot-routing-key header wins; otherwise the W3C baggage
// header is scanned for an sd-routing-key item. An empty return value means
// the message is untargeted. Malformed headers never produce an error, only
// an absent key.
func ExtractRoutingKey(headers map[string]string) string {
	if len(headers) == 0 {
		return ""
	}

	if key := strings.TrimSpace(headers[constants.HeaderRoutingKey]); key != "" {
		return key
	}

	return baggageItem(headers[constants.HeaderBaggage], constants.BaggageKeyName)
}

// baggageItem returns the value of the first key=value item in a
// comma-separated baggage string whose key matches, trimmed. Items without
// an equals sign are skipped.
func baggageItem(baggage, key string) string {
	if baggage == "" {
		return ""
	}

	for _, item := range strings.Split(baggage, ",") {
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}

	return ""
}
