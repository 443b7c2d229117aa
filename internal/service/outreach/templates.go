package outreach

import (
	"strings"
	"unicode"

	"github.com/ignite/partner-console/internal/domain"
)

// RiskCategory selects the nudge template for a group of retailers.
type RiskCategory string

const (
	CategoryInactive          RiskCategory = "inactive"
	CategoryZeroActions       RiskCategory = "zero_actions"
	CategoryIncompleteProfile RiskCategory = "incomplete_profile"
	CategoryGeneric           RiskCategory = "generic"
)

// Mode is the compose mode of a draft.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBulk   Mode = "bulk"
)

// ParseMode accepts "single" or "bulk" in any case.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSingle:
		return ModeSingle, true
	case ModeBulk:
		return ModeBulk, true
	}
	return "", false
}

// Template is a subject and rich-text body containing merge tokens.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var templates = map[RiskCategory]Template{
	CategoryInactive: {
		Subject: "We miss you in the {BrandName} campaign",
		Body: "<p>Hi {RetailerName},</p>" +
			"<p>We noticed you haven't opened the latest {BrandName} campaign yet. " +
			"Everything you need is ready to go in your partner portal, and it only takes a few minutes to get started.</p>" +
			"<p>Thanks,<br>The {BrandName} Partner Team</p>",
	},
	CategoryZeroActions: {
		Subject: "Ready to share the {BrandName} campaign?",
		Body: "<p>Hi {RetailerName},</p>" +
			"<p>Thanks for taking a look at the {BrandName} campaign. " +
			"You can post the social content, send the email, or download the in-store assets with one click.</p>" +
			"<p>Thanks,<br>The {BrandName} Partner Team</p>",
	},
	CategoryIncompleteProfile: {
		Subject: "Finish your {BrandName} partner profile",
		Body: "<p>Hi {RetailerName},</p>" +
			"<p>Your {BrandName} partner profile is missing a few details. " +
			"Completing it lets us personalize campaign assets for your store.</p>" +
			"<p>Thanks,<br>The {BrandName} Partner Team</p>",
	},
	CategoryGeneric: {
		Subject: "An update from {BrandName}",
		Body: "<p>Hi {RetailerName},</p>" +
			"<p>We wanted to check in about the current {BrandName} campaign. " +
			"Let us know if there's anything we can do to help.</p>" +
			"<p>Thanks,<br>The {BrandName} Partner Team</p>",
	},
}

// AllCategories returns the categories with a dedicated template.
func AllCategories() []RiskCategory {
	return []RiskCategory{CategoryInactive, CategoryZeroActions, CategoryIncompleteProfile, CategoryGeneric}
}

// categoryKeys maps a folded spelling to its category, so "ZeroActions",
// "zero_actions" and "Zero Actions" all name the same template.
var categoryKeys = func() map[string]RiskCategory {
	m := make(map[string]RiskCategory, len(templates))
	for c := range templates {
		m[foldCategory(string(c))] = c
	}
	return m
}()

func foldCategory(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ', '\t':
			return -1
		}
		return unicode.ToLower(r)
	}, strings.TrimSpace(s))
}

// ParseRiskCategory reports whether s names a known category. Case,
// underscores, hyphens and spaces are ignored.
func ParseRiskCategory(s string) (RiskCategory, bool) {
	if c, ok := categoryKeys[foldCategory(s)]; ok {
		return c, true
	}
	return CategoryGeneric, false
}

// TemplateFor returns the template for c, falling back to Generic.
func TemplateFor(c RiskCategory) Template {
	c, _ = ParseRiskCategory(string(c))
	return templates[c]
}

// CategoryFor suggests a category for a single record.
func CategoryFor(r domain.EngagementRecord) RiskCategory {
	switch r.Status {
	case domain.StatusUnopened:
		return CategoryInactive
	case domain.StatusViewed:
		return CategoryZeroActions
	}
	if r.TotalActions == 0 {
		return CategoryZeroActions
	}
	return CategoryGeneric
}

// Recipient is a retailer addressed by a draft.
type Recipient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecipientFrom builds a recipient from an engagement record.
func RecipientFrom(r domain.EngagementRecord) Recipient {
	return Recipient{ID: r.RetailerID, Name: r.Name}
}
