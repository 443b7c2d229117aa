// Package outreach renders nudge messages for retailers on the adoption
// watchlists.
//
// Rendering happens in two phases. When a draft is opened, {BrandName} is
// always bound and {RetailerName} is bound only for a single recipient; in
// bulk mode the token stays in the editable draft. At send time every
// selected recipient gets a personalized copy of the (possibly edited)
// draft. The package only computes messages; delivery belongs to the caller.
package outreach
