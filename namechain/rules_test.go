package namechain

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"
)

// TestNetworkConstants verifies that network ID constants are correctly
// defined. These constants identify which network a node is running on.
func TestNetworkConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant uint64
		want     uint64
	}{
		{"MainNetworkID", MainNetworkID, 0x2105},
		{"TestNetworkID", TestNetworkID, 0x14a34},
		{"FakeNetworkID", FakeNetworkID, 0x14a35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.constant, tt.want)
			}
		})
	}
}

// TestMainNetRules verifies the production configuration.
func TestMainNetRules(t *testing.T) {
	rules := MainNetRules()

	if rules.Name != "main" {
		t.Errorf("Name = %q, want %q", rules.Name, "main")
	}
	if rules.NetworkID != MainNetworkID {
		t.Errorf("NetworkID = %d, want %d", rules.NetworkID, MainNetworkID)
	}
	if rules.Names.RootName != "name.eth" {
		t.Errorf("RootName = %q, want %q", rules.Names.RootName, "name.eth")
	}
	if rules.Names.RootNode != Namehash("name.eth") {
		t.Error("RootNode does not match Namehash(RootName)")
	}
	if rules.Names.MinNameLength != 3 {
		t.Errorf("MinNameLength = %d, want 3", rules.Names.MinNameLength)
	}
	if rules.Names.GracePeriod != 90*24*time.Hour {
		t.Errorf("GracePeriod = %v, want 90 days", rules.Names.GracePeriod)
	}
	if rules.Upgrades.ReverseMigration {
		t.Error("ReverseMigration must be off on mainnet by default")
	}
}

// TestFakeNetRules verifies that the fake network accelerates the auction
// and enables all upgrades.
func TestFakeNetRules(t *testing.T) {
	rules := FakeNetRules()

	if rules.Pricing.AuctionDuration != 21*time.Minute {
		t.Errorf("AuctionDuration = %v, want 21 minutes", rules.Pricing.AuctionDuration)
	}
	if rules.Pricing.AuctionStep != time.Minute {
		t.Errorf("AuctionStep = %v, want 1 minute", rules.Pricing.AuctionStep)
	}
	if !rules.Upgrades.ReverseMigration {
		t.Error("fakenet must enable the reverse migration upgrade")
	}
}

// TestRateForLength verifies tier selection by rune count.
func TestRateForLength(t *testing.T) {
	p := DefaultPricingRules()

	tests := []struct {
		length int
		want   *big.Int
	}{
		{1, p.Rate1Letter},
		{2, p.Rate2Letter},
		{3, p.Rate3Letter},
		{4, p.Rate4Letter},
		{5, p.Rate5Letter},
		{42, p.Rate5Letter},
	}
	for _, tt := range tests {
		if got := p.RateForLength(tt.length); got.Cmp(tt.want) != 0 {
			t.Errorf("RateForLength(%d) = %v, want %v", tt.length, got, tt.want)
		}
	}
}

// TestRulesCopy verifies that Copy produces a deep copy: mutating the copy's
// big.Int fields must not leak into the original.
func TestRulesCopy(t *testing.T) {
	rules := MainNetRules()
	cp := rules.Copy()

	cp.Pricing.Rate5Letter.SetInt64(1)
	cp.Pricing.PremiumStart.SetInt64(1)

	if rules.Pricing.Rate5Letter.Cmp(big.NewInt(1)) == 0 {
		t.Error("Copy shares Rate5Letter with the original")
	}
	if rules.Pricing.PremiumStart.Cmp(big.NewInt(1)) == 0 {
		t.Error("Copy shares PremiumStart with the original")
	}
}

// TestRulesString verifies the JSON dump round-trips through json.Unmarshal.
func TestRulesString(t *testing.T) {
	rules := TestNetRules()

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(rules.String()), &decoded); err != nil {
		t.Fatalf("String() is not valid JSON: %v", err)
	}
	if decoded["Name"] != "test" {
		t.Errorf("decoded Name = %v, want %q", decoded["Name"], "test")
	}
}
