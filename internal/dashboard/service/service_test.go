package service

import "testing"

func TestAcceptanceRate(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		want   string
	}{
		{"no quotes", map[string]int{}, "0"},
		{"only pending", map[string]int{"draft": 3, "sent": 2}, "0"},
		{"all accepted", map[string]int{"accepted": 4}, "100"},
		{"half accepted", map[string]int{"accepted": 2, "rejected": 1, "expired": 1}, "50"},
		{"repeating fraction rounds", map[string]int{"accepted": 1, "rejected": 2}, "33.33"},
		{"pending ignored", map[string]int{"draft": 10, "sent": 5, "accepted": 3, "rejected": 1}, "75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := acceptanceRate(tt.counts)
			if got.String() != tt.want {
				t.Fatalf("acceptanceRate = %s, want %s", got.String(), tt.want)
			}
		})
	}
}
