package domain

import "testing"

func TestVisaStatusTransitions(t *testing.T) {
	cases := []struct {
		from  VisaStatus
		to    VisaStatus
		legal bool
	}{
		{VisaStatusDraft, VisaStatusSubmitted, true},
		{VisaStatusDraft, VisaStatusApproved, false},
		{VisaStatusSubmitted, VisaStatusUnderReview, true},
		{VisaStatusSubmitted, VisaStatusAdditionalRequired, true},
		{VisaStatusSubmitted, VisaStatusRejected, true},
		{VisaStatusSubmitted, VisaStatusExtended, false},
		{VisaStatusUnderReview, VisaStatusApproved, true},
		{VisaStatusUnderReview, VisaStatusPending, true},
		{VisaStatusAdditionalRequired, VisaStatusSubmitted, true},
		{VisaStatusAdditionalRequired, VisaStatusApproved, false},
		{VisaStatusPending, VisaStatusExtended, true},
		{VisaStatusApproved, VisaStatusExtended, true},
		{VisaStatusApproved, VisaStatusRejected, false},
		{VisaStatusRejected, VisaStatusSubmitted, false},
		{VisaStatusExtended, VisaStatusApproved, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.legal {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.legal)
		}
	}
}

func TestVisaStatusFlags(t *testing.T) {
	if !VisaStatusDraft.Editable() || !VisaStatusAdditionalRequired.Editable() {
		t.Fatal("draft and additional_required must be editable")
	}
	if VisaStatusSubmitted.Editable() || VisaStatusApproved.Editable() {
		t.Fatal("submitted and approved must not be editable")
	}

	if !VisaStatusDraft.Deletable() || !VisaStatusRejected.Deletable() {
		t.Fatal("draft and rejected must be deletable")
	}
	if VisaStatusUnderReview.Deletable() {
		t.Fatal("under_review must not be deletable")
	}

	if !VisaStatusRejected.Terminal() || !VisaStatusExtended.Terminal() {
		t.Fatal("rejected and extended are terminal")
	}
	if VisaStatusApproved.Terminal() {
		t.Fatal("approved can still move to extended")
	}
}
