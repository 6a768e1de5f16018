package rules

import (
	"testing"
	"time"
)

func TestEntityRefKey(t *testing.T) {
	e := EntityRef{Type: EntityCampaign, ID: "c-42"}
	if got := e.Key(); got != "campaign:c-42" {
		t.Errorf("Key() = %q, want %q", got, "campaign:c-42")
	}
}

func TestIdempotencyKeyDeterministic(t *testing.T) {
	entity := EntityRef{Type: EntityKeyword, ID: "kw-1"}
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	k1 := IdempotencyKey("tenant-1", ActionAdjustBid, entity, day)
	k2 := IdempotencyKey("tenant-1", ActionAdjustBid, entity, day)
	if k1 != k2 {
		t.Errorf("same inputs produced different keys: %q vs %q", k1, k2)
	}
	if len(k1) != 64 {
		t.Errorf("key should be a hex sha256 (64 chars), got %d", len(k1))
	}
}

func TestIdempotencyKeySameDayDifferentTimes(t *testing.T) {
	entity := EntityRef{Type: EntityCampaign, ID: "c-1"}
	morning := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)

	if IdempotencyKey("t", ActionPauseCampaign, entity, morning) != IdempotencyKey("t", ActionPauseCampaign, entity, evening) {
		t.Error("keys within the same calendar day should match")
	}
}

func TestIdempotencyKeyVariesByInput(t *testing.T) {
	entity := EntityRef{Type: EntityCampaign, ID: "c-1"}
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	base := IdempotencyKey("tenant-1", ActionPauseCampaign, entity, day)

	tests := []struct {
		name string
		got  string
	}{
		{"different tenant", IdempotencyKey("tenant-2", ActionPauseCampaign, entity, day)},
		{"different action", IdempotencyKey("tenant-1", ActionAdjustBid, entity, day)},
		{"different entity", IdempotencyKey("tenant-1", ActionPauseCampaign, EntityRef{Type: EntityCampaign, ID: "c-2"}, day)},
		{"different day", IdempotencyKey("tenant-1", ActionPauseCampaign, entity, day.AddDate(0, 0, 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got == base {
				t.Error("key should differ from base")
			}
		})
	}
}

func TestIdempotencyKeyUsesUTCDay(t *testing.T) {
	entity := EntityRef{Type: EntityCampaign, ID: "c-1"}
	// 23:30 UTC-5 on March 15 is 04:30 UTC on March 16.
	est := time.FixedZone("EST", -5*3600)
	local := time.Date(2026, 3, 15, 23, 30, 0, 0, est)
	utcNext := time.Date(2026, 3, 16, 4, 30, 0, 0, time.UTC)

	if IdempotencyKey("t", ActionPauseCampaign, entity, local) != IdempotencyKey("t", ActionPauseCampaign, entity, utcNext) {
		t.Error("keys should be computed on the UTC calendar day")
	}
}
