package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRoutingKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "nil headers",
			headers: nil,
			want:    "",
		},
		{
			name:    "empty headers",
			headers: map[string]string{},
			want:    "",
		},
		{
			name:    "explicit header",
			headers: map[string]string{"signadot-routing-key": "sbx-42"},
			want:    "sbx-42",
		},
		{
			name:    "explicit header trimmed",
			headers: map[string]string{"signadot-routing-key": "  sbx-42  "},
			want:    "sbx-42",
		},
		{
			name: "explicit header wins over baggage",
			headers: map[string]string{
				"signadot-routing-key": "sbx-42",
				"baggage":              "sd-routing-key=sbx-99",
			},
			want: "sbx-42",
		},
		{
			name:    "empty explicit header falls through to baggage",
			headers: map[string]string{"signadot-routing-key": "", "baggage": "sd-routing-key=sbx-7"},
			want:    "sbx-7",
		},
		{
			name:    "baggage single item",
			headers: map[string]string{"baggage": "sd-routing-key=sbx-42"},
			want:    "sbx-42",
		},
		{
			name:    "baggage among other items",
			headers: map[string]string{"baggage": "foo=bar, sd-routing-key=sbx-42, baz=qux"},
			want:    "sbx-42",
		},
		{
			name:    "baggage item value trimmed",
			headers: map[string]string{"baggage": "sd-routing-key= sbx-42 "},
			want:    "sbx-42",
		},
		{
			name:    "baggage first match wins",
			headers: map[string]string{"baggage": "sd-routing-key=first,sd-routing-key=second"},
			want:    "first",
		},
		{
			name:    "baggage key must match exactly",
			headers: map[string]string{"baggage": "sd-routing-key-extra=sbx-42"},
			want:    "",
		},
		{
			name:    "baggage item without equals is skipped",
			headers: map[string]string{"baggage": "garbage, sd-routing-key=sbx-42"},
			want:    "sbx-42",
		},
		{
			name:    "malformed baggage only",
			headers: map[string]string{"baggage": ",,=,junk"},
			want:    "",
		},
		{
			name:    "unrelated headers",
			headers: map[string]string{"content-type": "application/json"},
			want:    "",
		},
		{
			name:    "routing keys are case sensitive",
			headers: map[string]string{"baggage": "SD-Routing-Key=sbx-42"},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRoutingKey(tt.headers))
		})
	}
}
