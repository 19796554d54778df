package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierAt(t *testing.T) {
	const (
		createdAt = int64(1_700_000_000)
		delay     = int64(86400)
	)
	maturity := createdAt + delay

	tests := []struct {
		name string
		now  int64
		want Tier
	}{
		{"at creation", createdAt, TierFresh},
		{"just before half", createdAt + delay/2 - 1, TierFresh},
		{"exactly at half", createdAt + delay/2, TierAging},
		{"just before maturity", maturity - 1, TierAging},
		{"exactly at maturity", maturity, TierMature},
		{"long after maturity", maturity + 1_000_000, TierMature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierAt(tt.now, createdAt, maturity, delay))
		})
	}
}

func TestTierAtOddDelayRoundsDown(t *testing.T) {
	const (
		createdAt = int64(1000)
		delay     = int64(7)
	)
	maturity := createdAt + delay

	// delay/2 floors to 3, so the boundary sits at createdAt+3.
	assert.Equal(t, TierFresh, TierAt(createdAt+2, createdAt, maturity, delay))
	assert.Equal(t, TierAging, TierAt(createdAt+3, createdAt, maturity, delay))
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "fresh", TierFresh.String())
	assert.Equal(t, "aging", TierAging.String())
	assert.Equal(t, "mature", TierMature.String())
	assert.Equal(t, "unknown", Tier(42).String())
}
