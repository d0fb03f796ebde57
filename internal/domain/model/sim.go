package model

import "regexp"

var serialPattern = regexp.MustCompile(`^\d{19}$`)

// ValidSerial reports whether s looks like a full SIM serial (19 digits).
func ValidSerial(s string) bool { return serialPattern.MatchString(s) }

// SimAvailability is the upstream inventory's view of a SIM card.
type SimAvailability struct {
	Serial                  string   `json:"sim_serial"`
	Available               bool     `json:"available"`
	OwnerGroup              string   `json:"group"`
	IsThirdParty            bool     `json:"is_third"`
	OrgName                 string   `json:"org_name"`
	OrgImageURL             string   `json:"org_image_url"`
	EligibleSubscriptionIDs []string `json:"RTsubIDs"`
}

// Org is the reseller branding shown for third-party SIM cards.
type Org struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// SimLookup is the outcome of a SIM lookup. It is either NotEligible or
// carries the availability data of an eligible SIM; the data is only
// reachable through Availability.
type SimLookup struct {
	sim *SimAvailability
}

// NotEligible is the single empty result for missing, malformed, unavailable
// or failed lookups.
func NotEligible() SimLookup { return SimLookup{} }

// Eligible wraps an available SIM. A SIM reported unavailable yields NotEligible.
func Eligible(a SimAvailability) SimLookup {
	if !a.Available {
		return NotEligible()
	}
	ids := make([]string, len(a.EligibleSubscriptionIDs))
	copy(ids, a.EligibleSubscriptionIDs)
	a.EligibleSubscriptionIDs = ids
	return SimLookup{sim: &a}
}

func (l SimLookup) IsEligible() bool { return l.sim != nil }

func (l SimLookup) Availability() (SimAvailability, bool) {
	if l.sim == nil {
		return SimAvailability{}, false
	}
	return *l.sim, true
}

// EligibleIDs returns the subscription ids the SIM may be activated with.
func (l SimLookup) EligibleIDs() []string {
	if l.sim == nil {
		return nil
	}
	return l.sim.EligibleSubscriptionIDs
}

// Org returns reseller branding, or nil for non third-party SIMs.
func (l SimLookup) Org() *Org {
	if l.sim == nil || !l.sim.IsThirdParty {
		return nil
	}
	return &Org{Name: l.sim.OrgName, ImageURL: l.sim.OrgImageURL}
}
