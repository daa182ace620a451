// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package cohort

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DateLayout is the calendar-day layout used in keys, ranges and CLI flags.
const DateLayout = "2006-01-02"

// CampaignType is the campaign class a slice belongs to.
type CampaignType string

const (
	CampaignOfferwall    CampaignType = "offerwall"
	CampaignNonOfferwall CampaignType = "non_offerwall"
)

// Valid reports whether t is empty or a known campaign class.
func (t CampaignType) Valid() bool {
	return t == "" || t == CampaignOfferwall || t == CampaignNonOfferwall
}

// Key identifies one grouped slice. Fields the query did not group by are zero.
type Key struct {
	Date         time.Time
	Source       string
	Platform     string
	Country      string
	CampaignType CampaignType
}

// String renders the key as a "|"-joined tuple. Lexical order of this string is
// the tie-break order used by every sorted output.
func (k Key) String() string {
	date := ""
	if !k.Date.IsZero() {
		date = k.Date.Format(DateLayout)
	}
	return strings.Join([]string{date, k.Source, k.Platform, k.Country, string(k.CampaignType)}, "|")
}

// Label renders only the populated fields, e.g. "ironsource/ios".
func (k Key) Label() string {
	parts := make([]string, 0, 5)
	if !k.Date.IsZero() {
		parts = append(parts, k.Date.Format(DateLayout))
	}
	for _, p := range []string{k.Source, k.Platform, k.Country, string(k.CampaignType)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, "/")
}

type keyJSON struct {
	Date         string       `json:"date,omitempty"`
	Source       string       `json:"source,omitempty"`
	Platform     string       `json:"platform,omitempty"`
	Country      string       `json:"country,omitempty"`
	CampaignType CampaignType `json:"campaign_type,omitempty"`
}

// MarshalJSON writes only the populated dimensions.
func (k Key) MarshalJSON() ([]byte, error) {
	out := keyJSON{
		Source:       k.Source,
		Platform:     k.Platform,
		Country:      k.Country,
		CampaignType: k.CampaignType,
	}
	if !k.Date.IsZero() {
		out.Date = k.Date.Format(DateLayout)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (k *Key) UnmarshalJSON(data []byte) error {
	var in keyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*k = Key{Source: in.Source, Platform: in.Platform, Country: in.Country, CampaignType: in.CampaignType}
	if in.Date != "" {
		d, err := time.Parse(DateLayout, in.Date)
		if err != nil {
			return fmt.Errorf("invalid key date %q: %w", in.Date, err)
		}
		k.Date = d
	}
	return nil
}

// Dimension is one groupable column.
type Dimension string

const (
	DimDate         Dimension = "date"
	DimSource       Dimension = "source"
	DimPlatform     Dimension = "platform"
	DimCountry      Dimension = "country"
	DimCampaignType Dimension = "campaign_type"
)

// AllDimensions lists every groupable column in key order.
var AllDimensions = Dimensions{DimDate, DimSource, DimPlatform, DimCountry, DimCampaignType}

// Dimensions is the set of columns a query grouped by.
type Dimensions []Dimension

// ParseDimensions parses a comma-separated list such as "source,platform".
func ParseDimensions(s string) (Dimensions, error) {
	var dims Dimensions
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		dims = append(dims, Dimension(part))
	}
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	return dims, nil
}

// Validate rejects unknown or repeated dimensions.
func (d Dimensions) Validate() error {
	seen := make(map[Dimension]bool, len(d))
	for _, dim := range d {
		if !AllDimensions.Has(dim) {
			return fmt.Errorf("unknown dimension %q", dim)
		}
		if seen[dim] {
			return fmt.Errorf("dimension %q listed twice", dim)
		}
		seen[dim] = true
	}
	return nil
}

// Has reports whether dim is in the set.
func (d Dimensions) Has(dim Dimension) bool {
	for _, x := range d {
		if x == dim {
			return true
		}
	}
	return false
}

// Project blanks the key fields not in the set.
func (d Dimensions) Project(k Key) Key {
	var out Key
	if d.Has(DimDate) {
		out.Date = k.Date
	}
	if d.Has(DimSource) {
		out.Source = k.Source
	}
	if d.Has(DimPlatform) {
		out.Platform = k.Platform
	}
	if d.Has(DimCountry) {
		out.Country = k.Country
	}
	if d.Has(DimCampaignType) {
		out.CampaignType = k.CampaignType
	}
	return out
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both ends to days and rejects an inverted range.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("invalid date range: end %s before start %s",
			r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return r, nil
}

// LastNDays returns the n-day range ending on end (inclusive).
func LastNDays(end time.Time, n int) DateRange {
	if n < 1 {
		n = 1
	}
	e := Day(end)
	return DateRange{Start: e.AddDate(0, 0, -(n - 1)), End: e}
}

// Days returns the number of calendar days covered.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Previous returns the adjacent range of equal length ending the day before Start.
func (r DateRange) Previous() DateRange {
	n := r.Days()
	return DateRange{Start: r.Start.AddDate(0, 0, -n), End: r.Start.AddDate(0, 0, -1)}
}

// String renders "2024-01-01..2024-01-07".
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// MarshalJSON writes {"start": ..., "end": ...}.
func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{r.Start.Format(DateLayout), r.End.Format(DateLayout)})
}
