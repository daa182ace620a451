// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package cohort

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestParseHorizon(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Horizon
		wantErr bool
	}{
		{"d7", D7, false},
		{"D365", D365, false},
		{"14", D14, false},
		{" d0 ", D0, false},
		{"week", 0, true},
		{"-3", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseHorizon(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHorizon(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseHorizon(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNearestAtOrBelow(t *testing.T) {
	t.Parallel()

	a := map[Horizon]float64{D1: 0.4, D3: 0.3, D14: 0.1}
	b := map[Horizon]float64{D1: 0.5, D3: 0.2, D30: 0.05}

	if h, ok := NearestAtOrBelow(D7, a, b); !ok || h != D3 {
		t.Errorf("NearestAtOrBelow(d7) = %v, %v; want d3, true", h, ok)
	}
	if h, ok := NearestAtOrBelow(D1, a, b); !ok || h != D1 {
		t.Errorf("NearestAtOrBelow(d1) = %v, %v; want d1, true", h, ok)
	}
	if _, ok := NearestAtOrBelow(D0, a, b); ok {
		t.Error("NearestAtOrBelow(d0) found a horizon, want none")
	}
	if h, ok := ShortestCommon(a, b); !ok || h != D1 {
		t.Errorf("ShortestCommon = %v, %v; want d1, true", h, ok)
	}
	if _, ok := ShortestCommon(a, map[Horizon]float64{D90: 1}); ok {
		t.Error("ShortestCommon found a horizon for disjoint maps")
	}
}

func TestKeyStringOrdering(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	k := Key{Date: day, Source: "applovin", Platform: "ios"}
	if got, want := k.String(), "2024-05-02|applovin|ios||"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := k.Label(), "2024-05-02/applovin/ios"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
	if got := (Key{}).Label(); got != "all" {
		t.Errorf("empty Label() = %q, want all", got)
	}
	if (Key{Source: "a"}).String() >= (Key{Source: "b"}).String() {
		t.Error("keys should order lexically by source")
	}
}

func TestKeyJSON(t *testing.T) {
	t.Parallel()

	k := Key{Date: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), Source: "unity", CampaignType: CampaignOfferwall}
	data, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"date":"2024-01-09","source":"unity","campaign_type":"offerwall"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Key
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != k {
		t.Errorf("Unmarshal = %+v, want %+v", back, k)
	}
}

func TestDimensions(t *testing.T) {
	t.Parallel()

	dims, err := ParseDimensions("source, platform")
	if err != nil {
		t.Fatalf("ParseDimensions: %v", err)
	}
	k := Key{Date: time.Now(), Source: "s", Platform: "p", Country: "US"}
	got := dims.Project(k)
	if got != (Key{Source: "s", Platform: "p"}) {
		t.Errorf("Project = %+v", got)
	}

	for _, bad := range []string{"source,source", "campaign"} {
		if _, err := ParseDimensions(bad); err == nil {
			t.Errorf("ParseDimensions(%q) succeeded, want error", bad)
		}
	}
}

func TestDateRange(t *testing.T) {
	t.Parallel()

	end := time.Date(2024, 3, 14, 15, 30, 0, 0, time.UTC)
	week := LastNDays(end, 7)
	if got := week.String(); got != "2024-03-08..2024-03-14" {
		t.Errorf("LastNDays = %s", got)
	}
	if week.Days() != 7 {
		t.Errorf("Days() = %d, want 7", week.Days())
	}
	prev := week.Previous()
	if got := prev.String(); got != "2024-03-01..2024-03-07" {
		t.Errorf("Previous = %s", got)
	}
	if !week.Contains(end) || week.Contains(prev.End) {
		t.Error("Contains reported the wrong membership")
	}
	if _, err := NewDateRange(end, end.AddDate(0, 0, -1)); err == nil {
		t.Error("NewDateRange accepted an inverted range")
	}
}
