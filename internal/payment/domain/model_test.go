package domain

import "testing"

func TestEventIntent(t *testing.T) {
	cases := []struct {
		name      string
		reference string
		metadata  map[string]string
		want      Intent
	}{
		{
			name:      "type subscription",
			reference: "trx_1",
			metadata:  map[string]string{"type": "subscription"},
			want:      IntentSubscription,
		},
		{
			name:      "type cooperative contribution",
			reference: "trx_2",
			metadata:  map[string]string{"type": "cooperative_contribution"},
			want:      IntentContribution,
		},
		{
			name:      "purpose contribution",
			reference: "trx_3",
			metadata:  map[string]string{"purpose": "contribution"},
			want:      IntentContribution,
		},
		{
			name:      "contribution reference prefix",
			reference: "coop_01ABC",
			want:      IntentContribution,
		},
		{
			name:      "tier implies subscription",
			reference: "trx_4",
			metadata:  map[string]string{"tier": "basic"},
			want:      IntentSubscription,
		},
		{
			name:      "subscription reference prefix",
			reference: "sub_1",
			want:      IntentSubscription,
		},
		{
			name:      "no signal",
			reference: "trx_5",
			want:      IntentUnknown,
		},
		{
			name:      "type wins over prefix",
			reference: "sub_1",
			metadata:  map[string]string{"type": "cooperative_contribution"},
			want:      IntentContribution,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := Event{Reference: tc.reference, Metadata: tc.metadata}
			if got := e.Intent(); got != tc.want {
				t.Fatalf("intent = %q, want %q", got, tc.want)
			}
		})
	}
}
