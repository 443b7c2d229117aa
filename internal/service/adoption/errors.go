package adoption

import "errors"

// Sentinel errors for the adoption service layer.
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrMalformedRecord marks a retailer dropped during normalization. It is
	// logged, never returned: one bad record must not blank the roster.
	ErrMalformedRecord = errors.New("malformed retailer record")
)
