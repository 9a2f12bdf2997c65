package usecase

import "errors"

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account is disabled or locked.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrRateLimited indicates too many attempts inside the sliding window.
	ErrRateLimited = errors.New("too many attempts")

	// ErrPermissionDenied indicates the actor lacks the required permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotOwner indicates the actor is neither the owner of the record nor
	// privileged enough to act on someone else's.
	ErrNotOwner = errors.New("not the record owner")

	// ErrInvalidTransition indicates the requested status change is not in
	// the workflow's transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotEditable indicates the record's current status forbids edits.
	ErrNotEditable = errors.New("record is not editable in its current status")
	// ErrNotDeletable indicates the record's current status forbids removal.
	ErrNotDeletable = errors.New("record is not deletable in its current status")
	// ErrMissingRequiredDocuments indicates submission was attempted without
	// the mandatory attachments.
	ErrMissingRequiredDocuments = errors.New("required documents are missing")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUnknownRole indicates a role name outside the static role table.
	ErrUnknownRole = errors.New("unknown role")

	// ErrValidation indicates a request failed field-level validation.
	ErrValidation = errors.New("validation failed")
)
