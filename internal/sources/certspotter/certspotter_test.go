package certspotter

import (
	"encoding/json"
	"testing"

	"github.com/tedbot101/Stalker-Recon/internal/testutil"
)

func TestParseIssuances(t *testing.T) {
	tests := []struct {
		name      string
		issuances []issuance
		want      int
	}{
		{
			name: "flattens dns_names across issuances",
			issuances: []issuance{
				{DNSNames: []string{"a.example.com", "b.example.com"}},
				{DNSNames: []string{"c.example.com"}},
			},
			want: 3,
		},
		{
			name: "empty issuance contributes nothing",
			issuances: []issuance{
				{DNSNames: nil},
				{DNSNames: []string{"a.example.com"}},
			},
			want: 1,
		},
		{
			name:      "no issuances",
			issuances: nil,
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIssuances(tt.issuances)
			testutil.AssertEqual(t, len(got), tt.want, "flattened name count")
		})
	}
}

func TestIssuanceDecoding(t *testing.T) {
	payload := `[{"dns_names":["a.example.com","*.example.com"]},{"dns_names":["b.example.com"]}]`

	var issuances []issuance
	testutil.AssertNoError(t, json.Unmarshal([]byte(payload), &issuances), "decode certspotter payload")

	names := ParseIssuances(issuances)
	testutil.AssertEqual(t, len(names), 3, "names flattened from payload")
	testutil.AssertContains(t, names, "*.example.com", "wildcards pass through untouched")
}
