package adoption_test

import (
	"testing"

	"github.com/ignite/partner-console/internal/domain"
	"github.com/ignite/partner-console/internal/service/adoption"
)

func TestIsZeroAction(t *testing.T) {
	for _, status := range domain.AllStatuses() {
		for _, actions := range []int{0, 1, 5} {
			r := domain.EngagementRecord{Status: status, TotalActions: actions}
			want := status == domain.StatusUnopened || (status == domain.StatusViewed && actions == 0)
			if got := adoption.IsZeroAction(r); got != want {
				t.Errorf("IsZeroAction(%s, %d) = %v, want %v", status, actions, got, want)
			}
		}
	}
}

func TestClassifyEnforcesInvariants(t *testing.T) {
	policy := adoption.DefaultReachPolicy
	statuses := append(domain.AllStatuses(), "Archived", "")
	for _, status := range statuses {
		for _, actions := range []int{-2, 0, 1, 5} {
			in := domain.EngagementRecord{
				RetailerID:    "r-1",
				Status:        status,
				TotalActions:  actions,
				UsageChannels: domain.NewChannelSet(domain.ChannelEmail),
				LastActive:    label("yesterday"),
			}
			got := policy.Classify(in)

			if !got.Status.Valid() {
				t.Fatalf("status %q not repaired: %q", status, got.Status)
			}
			if got.TotalActions < 0 {
				t.Errorf("%s/%d: negative actions", status, actions)
			}
			switch got.Status {
			case domain.StatusParticipated:
				if got.TotalActions < 1 {
					t.Errorf("%s/%d: participated with %d actions", status, actions, got.TotalActions)
				}
			case domain.StatusUnopened:
				if got.TotalActions != 0 || got.EstimatedReach != 0 || !got.UsageChannels.IsEmpty() || got.LastActive != nil {
					t.Errorf("%s/%d: unopened record not cleared: %+v", status, actions, got)
				}
			}
			if got.EstimatedReach > 0 && got.Status != domain.StatusParticipated {
				t.Errorf("%s/%d: reach %d on %s", status, actions, got.EstimatedReach, got.Status)
			}
			if (got.LastActive == nil) != (got.Status == domain.StatusUnopened) {
				t.Errorf("%s/%d: last-active %v with status %s", status, actions, got.LastActive, got.Status)
			}
		}
	}
}

func TestClassifyIsPure(t *testing.T) {
	in := domain.EngagementRecord{RetailerID: "r-1", Status: domain.StatusViewed}
	first := adoption.DefaultReachPolicy.Classify(in)
	second := adoption.DefaultReachPolicy.Classify(in)
	if *first.LastActive != *second.LastActive || first.EstimatedReach != second.EstimatedReach {
		t.Fatalf("classify not deterministic: %+v vs %+v", first, second)
	}
	if in.LastActive != nil {
		t.Fatal("classify mutated its input")
	}
	if *first.LastActive != adoption.UnknownActivityLabel {
		t.Fatalf("missing label not defaulted: %q", *first.LastActive)
	}
}

func TestReachPolicy(t *testing.T) {
	p := adoption.NewReachPolicy(100, 10)
	if got := p.Reach(3); got != 130 {
		t.Fatalf("Reach(3) = %d, want 130", got)
	}
	if got := p.Reach(0); got != 0 {
		t.Fatalf("Reach(0) = %d, want 0", got)
	}
	if p.Reach(4) <= p.Reach(3) {
		t.Fatal("reach must grow with actions")
	}
	if neg := adoption.NewReachPolicy(-5, -1); neg.BaseReach != 0 || neg.PerActionReach != 0 {
		t.Fatalf("negative coefficients not clamped: %+v", neg)
	}
}
