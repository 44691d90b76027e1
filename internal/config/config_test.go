package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 90, cfg.Matching.InstitutionThreshold)
	assert.Equal(t, 90, cfg.Matching.CollaboratorThreshold)
	assert.Equal(t, []string{"UNIVERSITY", "COLLEGE"}, cfg.Matching.NoiseWords)
	assert.Equal(t, 80, cfg.Matching.ReviewThreshold)
	assert.Equal(t, 70, cfg.Matching.VerifyThreshold)

	assert.Equal(t, "smart", cfg.Partition.Strategy)
	assert.Equal(t, 10000, cfg.Partition.MemberTrials)
	assert.Equal(t, 100, cfg.Partition.RandomTrials)
	assert.Equal(t, 100, cfg.Partition.PaperTrials)
	assert.Equal(t, runtime.NumCPU(), cfg.Partition.Workers)
	assert.InDelta(t, 0.3, cfg.Partition.BothProbability, 1e-9)
	assert.InDelta(t, 0.4, cfg.Partition.SmartBothProbability, 1e-9)
	assert.Equal(t, []string{"STORAGE"}, cfg.Partition.SaturdayTopicPrefixes)

	assert.Equal(t, "PC_Friday", cfg.Tags.Friday)
	assert.Equal(t, "PC_Saturday", cfg.Tags.Saturday)
	assert.Equal(t, "PC_Both", cfg.Tags.Both)
	assert.Equal(t, "PC_Either", cfg.Tags.Either)

	assert.Equal(t, "topic:", cfg.Roster.TopicPrefix)
	assert.Equal(t, 2, cfg.Roster.MinTopicPreference)

	assert.Empty(t, cfg.Validate(), "defaults must validate")
}

func TestLoad_UsesViperDefaultsAndOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("partition.strategy", "random")
	viper.Set("partition.seed", 42)
	viper.Set("tags.friday", "FRI")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "random", cfg.Partition.Strategy)
	assert.Equal(t, uint64(42), cfg.Partition.Seed)
	assert.Equal(t, "FRI", cfg.Tags.Friday)
	assert.Equal(t, "PC_Saturday", cfg.Tags.Saturday)
	assert.Equal(t, []string{"STORAGE"}, cfg.Partition.SaturdayTopicPrefixes)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("partition.member_trials", 0)

	_, err := Load()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "partition.member_trials", verrs[0].Field)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"threshold above 100", func(c *Config) { c.Matching.InstitutionThreshold = 101 }, "matching.institution_threshold"},
		{"negative threshold", func(c *Config) { c.Matching.CollaboratorThreshold = -1 }, "matching.collaborator_threshold"},
		{"verify above review", func(c *Config) { c.Matching.VerifyThreshold = 85 }, "matching.verify_threshold"},
		{"blank noise word", func(c *Config) { c.Matching.NoiseWords = []string{"UNIVERSITY", " "} }, "matching.noise_words[1]"},
		{"unknown strategy", func(c *Config) { c.Partition.Strategy = "optimal" }, "partition.strategy"},
		{"zero workers", func(c *Config) { c.Partition.Workers = 0 }, "partition.workers"},
		{"zero paper trials", func(c *Config) { c.Partition.PaperTrials = 0 }, "partition.paper_trials"},
		{"probability above one", func(c *Config) { c.Partition.BothProbability = 1.5 }, "partition.both_probability"},
		{"conflicting prefixes", func(c *Config) { c.Partition.FridayTopicPrefixes = []string{"storage"} }, "partition.friday_topic_prefixes"},
		{"empty tag", func(c *Config) { c.Tags.Both = "" }, "tags.both"},
		{"tag with space", func(c *Config) { c.Tags.Either = "PC Either" }, "tags.either"},
		{"duplicate tag", func(c *Config) { c.Tags.Saturday = "PC_Friday" }, "tags.saturday"},
		{"empty topic prefix", func(c *Config) { c.Roster.TopicPrefix = "" }, "roster.topic_prefix"},
		{"negative preference", func(c *Config) { c.Roster.MinTopicPreference = -1 }, "roster.min_topic_preference"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Empty(t, ValidationErrors(nil).Error())

	one := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}}
	assert.Equal(t, "a: bad (got: 1)", one.Error())

	two := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}, {Field: "b", Value: 2, Message: "worse"}}
	msg := two.Error()
	assert.True(t, strings.HasPrefix(msg, "2 validation errors:"))
	assert.Contains(t, msg, "2. b: worse (got: 2)")
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/pcsplit", ConfigDir())
	assert.Equal(t, filepath.Join("/custom/config/pcsplit", "config.yaml"), ConfigFile())
}

func TestOutputPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("out", "friday.txt"), cfg.OutputPath("friday.txt"))

	cfg.Output.Dir = ""
	assert.Equal(t, "friday.txt", cfg.OutputPath("friday.txt"))
}
