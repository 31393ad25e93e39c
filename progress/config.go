package progress

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// Config holds Logger criteria as they come from a command line or a YAML
// file, and converts them to Options.
//
// Unset fields stay nil so that only the criteria actually given become
// options; New then applies the same validation either way.
//
// Example usage with cobra:
//
//	config := &progress.Config{}
//	cmd := &cobra.Command{
//	    Use: "import",
//	    RunE: func(cmd *cobra.Command, args []string) error {
//	        p, err := progress.New(action, config.ToOptions()...)
//	        ...
//	    },
//	}
//	config.AddFlags(cmd)
//
// Example file:
//
//	step: 100000
//	minutes: 30
//	max: 2500000
type Config struct {
	// Step fires every Step triggers.
	Step *int64 `yaml:"step,omitempty"`

	// Seconds, Minutes and Hours are added together into the time threshold.
	Seconds *float64 `yaml:"seconds,omitempty"`
	Minutes *float64 `yaml:"minutes,omitempty"`
	Hours   *float64 `yaml:"hours,omitempty"`

	// Max is the expected total, needed for ETAs.
	Max *int64 `yaml:"max,omitempty"`

	cmd   *cobra.Command
	flags configFlags
}

type configFlags struct {
	step    int64
	seconds float64
	minutes float64
	hours   float64
	max     int64
}

// AddFlags binds --step, --seconds, --minutes, --hours and --max on cmd.
// Flags the user sets override values loaded from a file.
func (c *Config) AddFlags(cmd *cobra.Command) {
	c.cmd = cmd
	cmd.Flags().Int64Var(&c.flags.step, "step", 0, "report every N triggers")
	cmd.Flags().Float64Var(&c.flags.seconds, "seconds", 0, "report after this many seconds (added to --minutes and --hours)")
	cmd.Flags().Float64Var(&c.flags.minutes, "minutes", 0, "report after this many minutes (added to --seconds and --hours)")
	cmd.Flags().Float64Var(&c.flags.hours, "hours", 0, "report after this many hours (added to --seconds and --minutes)")
	cmd.Flags().Int64Var(&c.flags.max, "max", 0, "expected total number of triggers, used to estimate time to completion")
}

// LoadFile reads criteria from a YAML file. Fields present in the file
// replace the current values; absent ones are kept.
func (c *Config) LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read progress config %s: %w", path, err)
	}
	var loaded Config
	if err := yaml.Unmarshal(content, &loaded); err != nil {
		return fmt.Errorf("unable to parse progress config %s: %w", path, err)
	}
	c.merge(loaded)
	return nil
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	c := &Config{}
	if err := c.LoadFile(path); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) merge(other Config) {
	if other.Step != nil {
		c.Step = other.Step
	}
	if other.Seconds != nil {
		c.Seconds = other.Seconds
	}
	if other.Minutes != nil {
		c.Minutes = other.Minutes
	}
	if other.Hours != nil {
		c.Hours = other.Hours
	}
	if other.Max != nil {
		c.Max = other.Max
	}
}

func (c *Config) applyFlags() {
	if c.cmd == nil {
		return
	}
	changed := c.cmd.Flags().Changed
	if changed("step") {
		step := c.flags.step
		c.Step = &step
	}
	if changed("seconds") {
		seconds := c.flags.seconds
		c.Seconds = &seconds
	}
	if changed("minutes") {
		minutes := c.flags.minutes
		c.Minutes = &minutes
	}
	if changed("hours") {
		hours := c.flags.hours
		c.Hours = &hours
	}
	if changed("max") {
		max := c.flags.max
		c.Max = &max
	}
}

// ToOptions converts the set fields to Options, with changed flags taking
// precedence over file values.
func (c *Config) ToOptions() []Option {
	c.applyFlags()
	var opts []Option
	if c.Step != nil {
		opts = append(opts, WithStep(*c.Step))
	}
	if c.Seconds != nil {
		opts = append(opts, WithSeconds(*c.Seconds))
	}
	if c.Minutes != nil {
		opts = append(opts, WithMinutes(*c.Minutes))
	}
	if c.Hours != nil {
		opts = append(opts, WithHours(*c.Hours))
	}
	if c.Max != nil {
		opts = append(opts, WithMax(*c.Max))
	}
	return opts
}
