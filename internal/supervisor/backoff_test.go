package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayPolicy_Ladder(t *testing.T) {
	tests := []struct {
		name       string
		initial    time.Duration
		multiplier float64
		maxDelay   time.Duration
		want       []time.Duration
	}{
		{
			name:       "doubling",
			initial:    100 * time.Millisecond,
			multiplier: 2,
			want:       []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond},
		},
		{
			name:       "default policy",
			initial:    DefaultInitialDelay,
			multiplier: DefaultBackoffMultiplier,
			want:       []time.Duration{15 * time.Second, 30 * time.Second, 60 * time.Second, 120 * time.Second},
		},
		{
			name:       "constant",
			initial:    time.Second,
			multiplier: 1,
			want:       []time.Duration{time.Second, time.Second, time.Second},
		},
		{
			name:       "tripling",
			initial:    time.Second,
			multiplier: 3,
			want:       []time.Duration{time.Second, 3 * time.Second, 9 * time.Second},
		},
		{
			name:       "capped",
			initial:    time.Second,
			multiplier: 2,
			maxDelay:   5 * time.Second,
			want:       []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newDelayPolicy(tt.initial, tt.multiplier, tt.maxDelay)
			for i, want := range tt.want {
				assert.Equal(t, want, p.Current(), "current before step %d", i)
				assert.Equal(t, want, p.Advance(), "step %d", i)
			}
		})
	}
}

func TestDelayPolicy_NonDecreasing(t *testing.T) {
	p := newDelayPolicy(15*time.Second, 2, 0)

	prev := time.Duration(0)
	for i := 0; i < 40; i++ {
		d := p.Advance()
		assert.GreaterOrEqual(t, d, prev, "step %d", i)
		prev = d
	}
}
