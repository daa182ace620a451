// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package report

import (
	"fmt"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/detection"
	"github.com/tomtom215/cohortlens/internal/kpi"
	"github.com/tomtom215/cohortlens/internal/thresholds"
)

// ComparisonOfferwall labels rejections raised by the chapter report.
const ComparisonOfferwall = "offerwall_chapters"

// ChapterFunnel is one source's offerwall progression.
type ChapterFunnel struct {
	Source      string                      `json:"source"`
	Chapter1CVR kpi.Value                   `json:"chapter_1_cvr"`
	Chapter3CVR kpi.Value                   `json:"chapter_3_cvr"`
	Chapter5CVR kpi.Value                   `json:"chapter_5_cvr"`
	BelowTarget bool                        `json:"below_target"`
	Chapters    map[int]cohort.ChapterStats `json:"chapters"`
}

// OfferwallReport is the chapter funnel report.
type OfferwallReport struct {
	Period         cohort.DateRange      `json:"period"`
	MinChapter3CVR float64               `json:"min_chapter3_cvr"`
	BySource       []ChapterFunnel       `json:"by_source"`
	Rejections     []detection.Rejection `json:"rejections"`
}

// OfferwallChapters rolls offerwall chapter rows up per source. A source is
// below target when its chapter 3 CVR is defined and under min_chapter3_cvr.
func OfferwallChapters(window cohort.DateRange, rows []cohort.AggregateRow, cfg thresholds.Config) (*OfferwallReport, error) {
	offerwall := make([]cohort.AggregateRow, 0, len(rows))
	for i := range rows {
		if rows[i].Key.CampaignType == cohort.CampaignOfferwall {
			offerwall = append(offerwall, rows[i])
		}
	}
	bySource, err := cohort.RollupChecked(offerwall, cohort.Dimensions{cohort.DimSource, cohort.DimCampaignType})
	if err != nil {
		return nil, fmt.Errorf("offerwall rollup: %w", err)
	}
	valid, rejected := cohort.SplitValid(bySource)

	report := &OfferwallReport{
		Period:         window,
		MinChapter3CVR: cfg.Offerwall.MinChapter3CVR,
		BySource:       make([]ChapterFunnel, 0, len(valid)),
		Rejections:     rejectionsOf(ComparisonOfferwall, rejected),
	}
	for i := range valid {
		row := &valid[i]
		funnel := ChapterFunnel{
			Source:      row.Key.Source,
			Chapter1CVR: kpi.ChapterCVR(row, 1),
			Chapter3CVR: kpi.ChapterCVR(row, 3),
			Chapter5CVR: kpi.ChapterCVR(row, 5),
			Chapters:    row.Chapters,
		}
		for _, tc := range detection.EvaluateTargets(row, cfg) {
			if tc.KPI == "chapter3_cvr" && tc.Status == detection.TargetBelow {
				funnel.BelowTarget = true
			}
		}
		report.BySource = append(report.BySource, funnel)
	}
	return report, nil
}
