// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package thresholds holds the alerting thresholds and KPI targets for one run.
//
// A Config is built once with New from caller overrides merged over Default,
// validated at construction and never mutated afterwards, so one value can be
// shared by concurrent report generations without locking.
package thresholds

import (
	"fmt"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/validation"
)

// ConfigurationError reports an invalid threshold or target.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid threshold configuration: %s: %s", e.Field, e.Reason)
}

// OfferwallTargets are the KPI targets for offerwall campaigns.
type OfferwallTargets struct {
	ROASD90        float64 `json:"roas_d90" validate:"gt=0"`
	MinChapter3CVR float64 `json:"min_chapter3_cvr" validate:"gt=0,lte=1"`
}

// NonOfferwallTargets are the KPI targets for every other campaign.
type NonOfferwallTargets struct {
	ROASD365          float64 `json:"roas_d365" validate:"gt=0"`
	ROASD180          float64 `json:"roas_d180" validate:"gt=0"`
	MinD7Retention    float64 `json:"min_d7_retention" validate:"gt=0,lte=1"`
	TargetD7Retention float64 `json:"target_d7_retention" validate:"gt=0,lte=1,gtefield=MinD7Retention"`
}

// Config is the validated, read-only threshold set. Thresholds are fractional
// magnitudes: 0.20 means a 20% move.
type Config struct {
	CPISpike      float64 `json:"cpi_spike" validate:"gt=0"`
	VolumeDrop    float64 `json:"volume_drop" validate:"gt=0,lte=1"`
	RetentionDrop float64 `json:"retention_drop" validate:"gt=0,lte=1"`
	ROASDrop      float64 `json:"roas_drop" validate:"gt=0,lte=1"`

	// RetentionHorizon is the cohort day the retention check targets before
	// falling back to the nearest tracked day below it.
	RetentionHorizon cohort.Horizon `json:"retention_horizon" validate:"cohortday"`

	// StrongVolumeGain is the install growth a key must exceed to be listed
	// as a strong performer.
	StrongVolumeGain float64 `json:"strong_volume_gain" validate:"gte=0"`

	Offerwall    OfferwallTargets    `json:"offerwall"`
	NonOfferwall NonOfferwallTargets `json:"non_offerwall"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		CPISpike:         0.20,
		VolumeDrop:       0.30,
		RetentionDrop:    0.10,
		ROASDrop:         0.15,
		RetentionHorizon: cohort.D7,
		StrongVolumeGain: 0,
		Offerwall: OfferwallTargets{
			ROASD90:        1.00,
			MinChapter3CVR: 0.08,
		},
		NonOfferwall: NonOfferwallTargets{
			ROASD365:          1.00,
			ROASD180:          0.90,
			MinD7Retention:    0.15,
			TargetD7Retention: 0.20,
		},
	}
}

// Overrides replaces individual defaults. Nil fields keep the default.
type Overrides struct {
	CPISpike         *float64
	VolumeDrop       *float64
	RetentionDrop    *float64
	ROASDrop         *float64
	RetentionHorizon *cohort.Horizon
	StrongVolumeGain *float64

	OfferwallROASD90        *float64
	OfferwallMinChapter3CVR *float64

	NonOfferwallROASD365          *float64
	NonOfferwallROASD180          *float64
	NonOfferwallMinD7Retention    *float64
	NonOfferwallTargetD7Retention *float64
}

// New merges o over Default and validates the result.
func New(o Overrides) (Config, error) {
	cfg := Default()
	setFloat(&cfg.CPISpike, o.CPISpike)
	setFloat(&cfg.VolumeDrop, o.VolumeDrop)
	setFloat(&cfg.RetentionDrop, o.RetentionDrop)
	setFloat(&cfg.ROASDrop, o.ROASDrop)
	setFloat(&cfg.StrongVolumeGain, o.StrongVolumeGain)
	if o.RetentionHorizon != nil {
		cfg.RetentionHorizon = *o.RetentionHorizon
	}
	setFloat(&cfg.Offerwall.ROASD90, o.OfferwallROASD90)
	setFloat(&cfg.Offerwall.MinChapter3CVR, o.OfferwallMinChapter3CVR)
	setFloat(&cfg.NonOfferwall.ROASD365, o.NonOfferwallROASD365)
	setFloat(&cfg.NonOfferwall.ROASD180, o.NonOfferwallROASD180)
	setFloat(&cfg.NonOfferwall.MinD7Retention, o.NonOfferwallMinD7Retention)
	setFloat(&cfg.NonOfferwall.TargetD7Retention, o.NonOfferwallTargetD7Retention)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns a *ConfigurationError for the first invalid field.
func (c Config) Validate() error {
	if verr := validation.ValidateStruct(&c); verr != nil {
		first := verr.First()
		return &ConfigurationError{Field: first.Field(), Reason: first.Error()}
	}
	return nil
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// Float is a helper for building Overrides literals.
func Float(v float64) *float64 {
	return &v
}
