// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package detection

import (
	"testing"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/thresholds"
)

func TestEvaluateTargetsOfferwall(t *testing.T) {
	row := &cohort.AggregateRow{
		Key:      cohort.Key{Source: "tapjoy", CampaignType: cohort.CampaignOfferwall},
		Spend:    1000,
		Installs: 500,
		Revenue:  map[cohort.Horizon]float64{cohort.D90: 1100},
		Chapters: map[int]cohort.ChapterStats{3: {UsersStarted: 500, UsersCompleted: 30}},
	}
	checks := EvaluateTargets(row, thresholds.Default())
	if len(checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(checks))
	}
	if checks[0].KPI != "roas" || checks[0].Status != TargetMet {
		t.Errorf("roas check = %+v, want met", checks[0])
	}
	if checks[1].KPI != "chapter3_cvr" || checks[1].Status != TargetBelow {
		t.Errorf("chapter check = %+v, want below (6%% < 8%%)", checks[1])
	}
}

func TestEvaluateTargetsNonOfferwallRetentionBand(t *testing.T) {
	tests := []struct {
		name      string
		retention map[cohort.Horizon]float64
		want      TargetStatus
	}{
		{"below minimum", map[cohort.Horizon]float64{cohort.D7: 0.10}, TargetBelow},
		{"between minimum and target", map[cohort.Horizon]float64{cohort.D7: 0.17}, TargetMet},
		{"at target", map[cohort.Horizon]float64{cohort.D7: 0.20}, TargetHealthy},
		{"not tracked", nil, TargetUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := &cohort.AggregateRow{
				Key:       cohort.Key{Source: "google", CampaignType: cohort.CampaignNonOfferwall},
				Spend:     1000,
				Installs:  100,
				Retention: tt.retention,
			}
			checks := EvaluateTargets(row, thresholds.Default())
			if len(checks) != 3 {
				t.Fatalf("got %d checks, want 3", len(checks))
			}
			for _, c := range checks[:2] {
				if c.Status != TargetUndefined {
					t.Errorf("%s %s = %s, want undefined without revenue", c.KPI, c.Horizon, c.Status)
				}
			}
			if got := checks[2].Status; got != tt.want {
				t.Errorf("retention status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvaluateTargetsUnclassified(t *testing.T) {
	row := &cohort.AggregateRow{Key: cohort.Key{Source: "meta"}, Spend: 10, Installs: 1}
	if checks := EvaluateTargets(row, thresholds.Default()); checks != nil {
		t.Errorf("EvaluateTargets() = %+v, want nil", checks)
	}
}
