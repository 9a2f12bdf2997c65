package domain

import "testing"

func TestTranslationStatusTransitions(t *testing.T) {
	cases := []struct {
		from  TranslationStatus
		to    TranslationStatus
		legal bool
	}{
		{TranslationStatusPending, TranslationStatusProcessing, true},
		{TranslationStatusPending, TranslationStatusRejected, true},
		{TranslationStatusPending, TranslationStatusCompleted, false},
		{TranslationStatusProcessing, TranslationStatusCompleted, true},
		{TranslationStatusProcessing, TranslationStatusRejected, true},
		{TranslationStatusProcessing, TranslationStatusPending, false},
		{TranslationStatusCompleted, TranslationStatusProcessing, false},
		{TranslationStatusRejected, TranslationStatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.legal {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.legal)
		}
	}

	if !TranslationStatusCompleted.Terminal() || !TranslationStatusRejected.Terminal() {
		t.Fatal("completed and rejected are terminal")
	}
	if !TranslationStatusPending.Deletable() || TranslationStatusProcessing.Deletable() {
		t.Fatal("only pending and rejected requests may be deleted")
	}
}

func TestVisitorStatusTransitions(t *testing.T) {
	cases := []struct {
		from  VisitorStatus
		to    VisitorStatus
		legal bool
	}{
		{VisitorStatusPending, VisitorStatusUnderReview, true},
		{VisitorStatusPending, VisitorStatusRejected, true},
		{VisitorStatusPending, VisitorStatusApproved, false},
		{VisitorStatusUnderReview, VisitorStatusApproved, true},
		{VisitorStatusUnderReview, VisitorStatusRejected, true},
		{VisitorStatusApproved, VisitorStatusCompleted, true},
		{VisitorStatusApproved, VisitorStatusRejected, false},
		{VisitorStatusCompleted, VisitorStatusPending, false},
		{VisitorStatusRejected, VisitorStatusUnderReview, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.legal {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.legal)
		}
	}

	if !VisitorStatusPending.Editable() || VisitorStatusUnderReview.Editable() {
		t.Fatal("only pending registrations are editable")
	}
	if !VisitorStatusRejected.Terminal() || !VisitorStatusCompleted.Terminal() {
		t.Fatal("rejected and completed are terminal")
	}
}
