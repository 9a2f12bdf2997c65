package domain

import "testing"

func TestMOUStatusTransitions(t *testing.T) {
	cases := []struct {
		from  MOUStatus
		to    MOUStatus
		legal bool
	}{
		{MOUStatusDraft, MOUStatusProposed, true},
		{MOUStatusDraft, MOUStatusSigned, false},
		{MOUStatusProposed, MOUStatusUnderReview, true},
		{MOUStatusProposed, MOUStatusNeedsRevision, true},
		{MOUStatusProposed, MOUStatusApproved, false},
		{MOUStatusUnderReview, MOUStatusApproved, true},
		{MOUStatusUnderReview, MOUStatusRejected, true},
		{MOUStatusNeedsRevision, MOUStatusProposed, true},
		{MOUStatusNeedsRevision, MOUStatusUnderReview, false},
		{MOUStatusApproved, MOUStatusSigned, true},
		{MOUStatusApproved, MOUStatusExpired, false},
		{MOUStatusSigned, MOUStatusExpired, true},
		{MOUStatusRejected, MOUStatusProposed, false},
		{MOUStatusExpired, MOUStatusSigned, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.legal {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.legal)
		}
	}
}

func TestMOUStatusFlags(t *testing.T) {
	if !MOUStatusDraft.Editable() || !MOUStatusNeedsRevision.Editable() {
		t.Fatal("draft and needs_revision must be editable")
	}
	if MOUStatusSigned.Editable() {
		t.Fatal("signed must not be editable")
	}

	if !MOUStatusDraft.Deletable() || !MOUStatusRejected.Deletable() {
		t.Fatal("draft and rejected must be deletable")
	}
	if MOUStatusApproved.Deletable() {
		t.Fatal("approved must not be deletable")
	}

	if !MOUStatusRejected.Terminal() || !MOUStatusExpired.Terminal() {
		t.Fatal("rejected and expired are terminal")
	}
}
