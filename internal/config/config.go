// Package config holds pcsplit's configuration: input locations, matching
// thresholds, partition search parameters, scheduling tags and output
// settings. Values come from viper, so a config file, PCSPLIT_* environment
// variables and command flags all feed the same struct.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Inputs    InputsConfig    `mapstructure:"inputs" yaml:"inputs"`
	Matching  MatchingConfig  `mapstructure:"matching" yaml:"matching"`
	Partition PartitionConfig `mapstructure:"partition" yaml:"partition"`
	Tags      TagsConfig      `mapstructure:"tags" yaml:"tags"`
	Roster    RosterConfig    `mapstructure:"roster" yaml:"roster"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
}

// InputsConfig locates the three input files.
type InputsConfig struct {
	// Papers is the submissions JSON export.
	Papers string `mapstructure:"papers" yaml:"papers"`
	// Roster is the committee CSV export.
	Roster string `mapstructure:"roster" yaml:"roster"`
	// Institutions is the alias list, one institution per line.
	Institutions string `mapstructure:"institutions" yaml:"institutions"`
}

// MatchingConfig controls fuzzy name resolution.
type MatchingConfig struct {
	// InstitutionThreshold is the minimum token-set score for affiliation text.
	InstitutionThreshold int `mapstructure:"institution_threshold" yaml:"institution_threshold"`
	// CollaboratorThreshold is the minimum ratio score for collaborator lines.
	CollaboratorThreshold int `mapstructure:"collaborator_threshold" yaml:"collaborator_threshold"`
	// NoiseWords are removed from names before matching.
	NoiseWords []string `mapstructure:"noise_words" yaml:"noise_words"`
	// ReviewThreshold is the minimum score listed in the collaborator review.
	ReviewThreshold int `mapstructure:"review_threshold" yaml:"review_threshold"`
	// VerifyThreshold marks review entries scoring above it but below
	// ReviewThreshold for manual verification.
	VerifyThreshold int `mapstructure:"verify_threshold" yaml:"verify_threshold"`
}

// PartitionConfig controls the randomized search.
type PartitionConfig struct {
	// Strategy is "smart" or "random".
	Strategy     string `mapstructure:"strategy" yaml:"strategy"`
	MemberTrials int    `mapstructure:"member_trials" yaml:"member_trials"`
	RandomTrials int    `mapstructure:"random_trials" yaml:"random_trials"`
	PaperTrials  int    `mapstructure:"paper_trials" yaml:"paper_trials"`
	// Seed fixes the search. Zero picks a seed from the clock.
	Seed    uint64 `mapstructure:"seed" yaml:"seed"`
	Workers int    `mapstructure:"workers" yaml:"workers"`
	// BothProbability is the chance a Both member is placed on both days
	// by the random strategy.
	BothProbability float64 `mapstructure:"both_probability" yaml:"both_probability"`
	// SmartBothProbability is the same chance for the smart strategy.
	SmartBothProbability  float64  `mapstructure:"smart_both_probability" yaml:"smart_both_probability"`
	SaturdayTopicPrefixes []string `mapstructure:"saturday_topic_prefixes" yaml:"saturday_topic_prefixes"`
	FridayTopicPrefixes   []string `mapstructure:"friday_topic_prefixes" yaml:"friday_topic_prefixes"`
}

// TagsConfig names the roster tags that constrain scheduling.
type TagsConfig struct {
	Friday   string `mapstructure:"friday" yaml:"friday"`
	Saturday string `mapstructure:"saturday" yaml:"saturday"`
	Both     string `mapstructure:"both" yaml:"both"`
	Either   string `mapstructure:"either" yaml:"either"`
}

// RosterConfig describes the roster CSV's topic preference columns.
type RosterConfig struct {
	TopicPrefix        string `mapstructure:"topic_prefix" yaml:"topic_prefix"`
	MinTopicPreference int    `mapstructure:"min_topic_preference" yaml:"min_topic_preference"`
}

// LoggingConfig controls debug logging behavior.
type LoggingConfig struct {
	// Enabled turns on the JSON log file.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is one of debug, info, warn or error.
	Level string `mapstructure:"level" yaml:"level"`
	// Dir holds pcsplit.log. Empty means stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// OutputConfig controls where reports are written and how they look.
type OutputConfig struct {
	Dir   string `mapstructure:"dir" yaml:"dir"`
	Color bool   `mapstructure:"color" yaml:"color"`
}

// StoreConfig locates the SQLite conflict snapshot.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			Papers:       "papers.json",
			Roster:       "pc.csv",
			Institutions: "institutions.csv",
		},
		Matching: MatchingConfig{
			InstitutionThreshold:  90,
			CollaboratorThreshold: 90,
			NoiseWords:            []string{"UNIVERSITY", "COLLEGE"},
			ReviewThreshold:       80,
			VerifyThreshold:       70,
		},
		Partition: PartitionConfig{
			Strategy:              "smart",
			MemberTrials:          10000,
			RandomTrials:          100,
			PaperTrials:           100,
			Workers:               runtime.NumCPU(),
			BothProbability:       0.3,
			SmartBothProbability:  0.4,
			SaturdayTopicPrefixes: []string{"STORAGE"},
			FridayTopicPrefixes:   []string{},
		},
		Tags: TagsConfig{
			Friday:   "PC_Friday",
			Saturday: "PC_Saturday",
			Both:     "PC_Both",
			Either:   "PC_Either",
		},
		Roster: RosterConfig{
			TopicPrefix:        "topic:",
			MinTopicPreference: 2,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
		},
		Output: OutputConfig{
			Dir:   "out",
			Color: true,
		},
		Store: StoreConfig{
			Path: "pcsplit.db",
		},
	}
}

// SetDefaults registers default values with viper.
// This should be called before reading config files.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("inputs.papers", defaults.Inputs.Papers)
	viper.SetDefault("inputs.roster", defaults.Inputs.Roster)
	viper.SetDefault("inputs.institutions", defaults.Inputs.Institutions)

	viper.SetDefault("matching.institution_threshold", defaults.Matching.InstitutionThreshold)
	viper.SetDefault("matching.collaborator_threshold", defaults.Matching.CollaboratorThreshold)
	viper.SetDefault("matching.noise_words", defaults.Matching.NoiseWords)
	viper.SetDefault("matching.review_threshold", defaults.Matching.ReviewThreshold)
	viper.SetDefault("matching.verify_threshold", defaults.Matching.VerifyThreshold)

	viper.SetDefault("partition.strategy", defaults.Partition.Strategy)
	viper.SetDefault("partition.member_trials", defaults.Partition.MemberTrials)
	viper.SetDefault("partition.random_trials", defaults.Partition.RandomTrials)
	viper.SetDefault("partition.paper_trials", defaults.Partition.PaperTrials)
	viper.SetDefault("partition.seed", defaults.Partition.Seed)
	viper.SetDefault("partition.workers", defaults.Partition.Workers)
	viper.SetDefault("partition.both_probability", defaults.Partition.BothProbability)
	viper.SetDefault("partition.smart_both_probability", defaults.Partition.SmartBothProbability)
	viper.SetDefault("partition.saturday_topic_prefixes", defaults.Partition.SaturdayTopicPrefixes)
	viper.SetDefault("partition.friday_topic_prefixes", defaults.Partition.FridayTopicPrefixes)

	viper.SetDefault("tags.friday", defaults.Tags.Friday)
	viper.SetDefault("tags.saturday", defaults.Tags.Saturday)
	viper.SetDefault("tags.both", defaults.Tags.Both)
	viper.SetDefault("tags.either", defaults.Tags.Either)

	viper.SetDefault("roster.topic_prefix", defaults.Roster.TopicPrefix)
	viper.SetDefault("roster.min_topic_preference", defaults.Roster.MinTopicPreference)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	viper.SetDefault("output.dir", defaults.Output.Dir)
	viper.SetDefault("output.color", defaults.Output.Color)

	viper.SetDefault("store.path", defaults.Store.Path)
}

// Load reads the configuration from viper into a Config struct and
// validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the directory holding the user config file.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pcsplit")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pcsplit"
	}
	return filepath.Join(home, ".config", "pcsplit")
}

// ConfigFile returns the path to the user config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidStrategies returns the supported partition strategies.
func ValidStrategies() []string {
	return []string{"smart", "random"}
}

// OutputPath joins name onto the output directory.
func (c *Config) OutputPath(name string) string {
	if c.Output.Dir == "" {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}
