package pipeline

import (
	"testing"

	"grayco-suite/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHatches_UnavailableFromTerminalStatuses(t *testing.T) {
	for _, s := range []domain.Status{domain.StatusClosedWon, domain.StatusClosedLost, domain.StatusCompleted, domain.StatusArchived, domain.StatusNew} {
		assert.False(t, CanMarkWon(s), "won from %s", s)
		assert.False(t, CanMarkLost(s), "lost from %s", s)
	}
	for _, s := range []domain.Status{domain.StatusBlockA, domain.StatusDesign, domain.StatusQuoting, domain.StatusAwaitingDeposit, domain.StatusActiveProduction, domain.StatusMigrated} {
		assert.True(t, CanMarkWon(s), "won from %s", s)
		assert.True(t, CanMarkLost(s), "lost from %s", s)
	}
}

func TestPricingUnlocked(t *testing.T) {
	p := &domain.Project{}
	assert.False(t, PricingUnlocked(p))
	p.NoDesignRequired = true
	assert.True(t, PricingUnlocked(p))
	p = &domain.Project{DesignProofDriveID: "file-1"}
	assert.True(t, PricingUnlocked(p))
}

func TestSpecsReady(t *testing.T) {
	assert.False(t, SpecsReady(&domain.Project{}))
	assert.False(t, SpecsReady(&domain.Project{MasterSpecFileID: "m"}))
	assert.False(t, SpecsReady(&domain.Project{SignedSpecFileID: "s"}))
	assert.True(t, SpecsReady(&domain.Project{MasterSpecFileID: "m", SignedSpecFileID: "s"}))
}

func TestRuleNext(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		current domain.Status
		ok      bool
		want    domain.Status
		outcome Outcome
	}{
		{"design from block a", DesignRequestSent, domain.StatusBlockA, true, domain.StatusDesign, true},
		{"design from migrated", DesignRequestSent, domain.StatusMigrated, true, domain.StatusDesign, true},
		{"design does not regress quoting", DesignRequestSent, domain.StatusQuoting, false, domain.StatusQuoting, true},
		{"design failed send", DesignRequestSent, domain.StatusNew, false, domain.StatusNew, false},
		{"pricing from design", PricingRequestSent, domain.StatusDesign, true, domain.StatusQuoting, true},
		{"pricing already quoting", PricingRequestSent, domain.StatusQuoting, false, domain.StatusQuoting, true},
		{"proposal from quoting", ProposalSent, domain.StatusQuoting, true, domain.StatusAwaitingDeposit, true},
		{"proposal not from production", ProposalSent, domain.StatusActiveProduction, false, domain.StatusActiveProduction, true},
		{"victory lap from confirmed", VictoryLapSent, domain.StatusConfirmed, true, domain.StatusCompleted, true},
		{"victory lap not from archived", VictoryLapSent, domain.StatusArchived, false, domain.StatusArchived, true},
		{"contact from new", OutboundContact, domain.StatusNew, true, domain.StatusBlockA, true},
		{"contact from design", OutboundContact, domain.StatusDesign, false, domain.StatusDesign, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rule.Next(tt.current, tt.outcome)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleNext_NilResult(t *testing.T) {
	_, ok := DesignRequestSent.Next(domain.StatusNew, nil)
	assert.False(t, ok)
}
