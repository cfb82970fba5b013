package review

import "testing"

func TestAverage(t *testing.T) {
	ratings := func(rs ...int) []Review {
		reviews := make([]Review, 0, len(rs))
		for _, r := range rs {
			reviews = append(reviews, Review{Rating: r})
		}
		return reviews
	}

	tests := []struct {
		name string
		in   []Review
		want float64
	}{
		{"empty", nil, 0},
		{"single", ratings(4), 4},
		{"mixed", ratings(4, 2), 3},
		{"fractional", ratings(5, 4, 4), 13.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Average(tt.in); got != tt.want {
				t.Fatalf("Average() = %v, want %v", got, tt.want)
			}
		})
	}
}
