package outreach

import "errors"

// Sentinel errors for the outreach composer.
var (
	ErrDraftNotFound     = errors.New("draft not found")
	ErrDraftClosed       = errors.New("draft is closed")
	ErrEmptyRecipientSet = errors.New("no recipients selected")
	ErrNoRecipients      = errors.New("draft needs at least one recipient")
	ErrInvalidMode       = errors.New("invalid compose mode")
	ErrUnknownRecipient  = errors.New("recipient is not part of this draft")
	ErrSelectionLocked   = errors.New("single-recipient drafts cannot change selection")
)
