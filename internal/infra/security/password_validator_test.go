package security

import "testing"

func TestDefaultPasswordValidator(t *testing.T) {
	v := DefaultPasswordValidator()

	cases := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{"strong passphrase", "Office-Gate-2026!", true},
		{"too short", "Ab1!xyz", false},
		{"single class", "aaaaaaaaaaaaaa", false},
		{"common word", "password123456", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.password)
			if tc.wantOK && err != nil {
				t.Fatalf("rejected %q: %v", tc.password, err)
			}
			if !tc.wantOK && err == nil {
				t.Fatalf("accepted %q", tc.password)
			}
		})
	}
}

func TestPasswordRuleCodes(t *testing.T) {
	var verr *PasswordValidationError

	err := MinLengthRule(10).Validate("short")
	if !asValidationError(err, &verr) || verr.Code != "min_length" {
		t.Fatalf("unexpected error: %v", err)
	}

	err = RequireCharacterClassesRule(3).Validate("alllowercase")
	if !asValidationError(err, &verr) || verr.Code != "character_classes" {
		t.Fatalf("unexpected error: %v", err)
	}

	err = MinStrengthRule(3).Validate("qwerty12345")
	if !asValidationError(err, &verr) || verr.Code != "strength" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func asValidationError(err error, target **PasswordValidationError) bool {
	if err == nil {
		return false
	}
	v, ok := err.(*PasswordValidationError)
	if !ok {
		return false
	}
	*target = v
	return true
}

func TestNilValidator(t *testing.T) {
	var v *PasswordValidator
	if err := v.Validate("anything"); err == nil {
		t.Fatal("nil validator accepted a password")
	}
}
