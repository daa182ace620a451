// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package config

import (
	"fmt"
	"slices"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/validation"
)

// Validate checks every section. Alerting values are validated by building
// the threshold set.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if _, err := c.Thresholds(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateReport() error {
	if !slices.Contains(cohort.CanonicalHorizons, cohort.Horizon(c.Report.WeeklyHorizon)) {
		return fmt.Errorf("report.weekly_horizon must be a tracked cohort day, got %d", c.Report.WeeklyHorizon)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not a recognised level", c.Logging.Level)
	}
	return nil
}
