package claims

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SchedulePolicy controls how many checks a claim gets and when.
type SchedulePolicy struct {
	LongWindowDays          int `yaml:"long_window_days"`           // windows above this get a regular cadence
	CadenceDays             int `yaml:"cadence_days"`               // spacing of regular checks
	ShortWindowDays         int `yaml:"short_window_days"`          // windows at or below this get only the endpoint
	MergeTailDays           int `yaml:"merge_tail_days"`            // a cadence check this close to the endpoint is dropped
	GoalFirstCheckDays      int `yaml:"goal_first_check_days"`      // offset from the article date
	StatementFirstCheckDays int `yaml:"statement_first_check_days"` // offset from the article date
}

func DefaultSchedulePolicy() SchedulePolicy {
	return SchedulePolicy{
		LongWindowDays:          90,
		CadenceDays:             30,
		ShortWindowDays:         14,
		MergeTailDays:           5,
		GoalFirstCheckDays:      30,
		StatementFirstCheckDays: 0,
	}
}

// LoadSchedulePolicy reads a YAML policy. An empty path yields the defaults,
// and fields left out of the file keep their default value.
func LoadSchedulePolicy(path string) (SchedulePolicy, error) {
	policy := DefaultSchedulePolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SchedulePolicy{}, fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return SchedulePolicy{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := policy.validate(); err != nil {
		return SchedulePolicy{}, fmt.Errorf("invalid schedule policy %s: %w", path, err)
	}

	return policy, nil
}

func (p SchedulePolicy) validate() error {
	positiveFields := map[string]int{
		"cadence days":      p.CadenceDays,
		"long window days":  p.LongWindowDays,
		"short window days": p.ShortWindowDays,
	}
	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"merge tail days":            p.MergeTailDays,
		"goal first check days":      p.GoalFirstCheckDays,
		"statement first check days": p.StatementFirstCheckDays,
	}
	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if p.ShortWindowDays >= p.LongWindowDays {
		return fmt.Errorf("short window must be shorter than long window")
	}

	return nil
}
