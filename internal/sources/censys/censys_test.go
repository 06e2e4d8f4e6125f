package censys

import (
	"encoding/json"
	"testing"

	"github.com/tedbot101/Stalker-Recon/internal/testutil"
)

func TestParseHits(t *testing.T) {
	tests := []struct {
		name string
		hits []hit
		want int
	}{
		{
			name: "flattens names across hits",
			hits: []hit{
				{Names: []string{"a.example.com", "b.example.com"}},
				{Names: []string{"c.example.com"}},
			},
			want: 3,
		},
		{
			name: "hit without names contributes nothing",
			hits: []hit{
				{Names: nil},
				{Names: []string{"a.example.com"}},
			},
			want: 1,
		},
		{
			name: "no hits",
			hits: nil,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHits(tt.hits)
			testutil.AssertEqual(t, len(got), tt.want, "flattened name count")
		})
	}
}

func TestSearchResponseDecoding(t *testing.T) {
	payload := `{"result":{"hits":[{"names":["a.example.com","b.example.com"]},{"names":["c.example.com"]}]}}`

	var resp searchResponse
	testutil.AssertNoError(t, json.Unmarshal([]byte(payload), &resp), "decode censys payload")

	names := ParseHits(resp.Result.Hits)
	testutil.AssertEqual(t, len(names), 3, "names flattened from payload")
	testutil.AssertContains(t, names, "c.example.com", "nested name recovered")
}
