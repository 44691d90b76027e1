package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "partition.member_trials")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateMatching()...)
	errors = append(errors, c.validatePartition()...)
	errors = append(errors, c.validateTags()...)
	errors = append(errors, c.validateRoster()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func validateScore(field string, v int) []ValidationError {
	if v < 0 || v > 100 {
		return []ValidationError{{Field: field, Value: v, Message: "must be between 0 and 100"}}
	}
	return nil
}

func validateProbability(field string, v float64) []ValidationError {
	if v < 0 || v > 1 {
		return []ValidationError{{Field: field, Value: v, Message: "must be between 0 and 1"}}
	}
	return nil
}

func validatePositive(field string, v int) []ValidationError {
	if v < 1 {
		return []ValidationError{{Field: field, Value: v, Message: "must be at least 1"}}
	}
	return nil
}

// validateMatching validates the MatchingConfig
func (c *Config) validateMatching() []ValidationError {
	var errors []ValidationError

	errors = append(errors, validateScore("matching.institution_threshold", c.Matching.InstitutionThreshold)...)
	errors = append(errors, validateScore("matching.collaborator_threshold", c.Matching.CollaboratorThreshold)...)
	errors = append(errors, validateScore("matching.review_threshold", c.Matching.ReviewThreshold)...)
	errors = append(errors, validateScore("matching.verify_threshold", c.Matching.VerifyThreshold)...)

	if c.Matching.VerifyThreshold > c.Matching.ReviewThreshold {
		errors = append(errors, ValidationError{
			Field:   "matching.verify_threshold",
			Value:   c.Matching.VerifyThreshold,
			Message: fmt.Sprintf("must not exceed matching.review_threshold (%d)", c.Matching.ReviewThreshold),
		})
	}

	for i, w := range c.Matching.NoiseWords {
		if strings.TrimSpace(w) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("matching.noise_words[%d]", i),
				Value:   w,
				Message: "must not be blank",
			})
		}
	}

	return errors
}

// validatePartition validates the PartitionConfig
func (c *Config) validatePartition() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidStrategies(), c.Partition.Strategy) {
		errors = append(errors, ValidationError{
			Field:   "partition.strategy",
			Value:   c.Partition.Strategy,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidStrategies(), ", ")),
		})
	}

	errors = append(errors, validatePositive("partition.member_trials", c.Partition.MemberTrials)...)
	errors = append(errors, validatePositive("partition.random_trials", c.Partition.RandomTrials)...)
	errors = append(errors, validatePositive("partition.paper_trials", c.Partition.PaperTrials)...)
	errors = append(errors, validatePositive("partition.workers", c.Partition.Workers)...)
	errors = append(errors, validateProbability("partition.both_probability", c.Partition.BothProbability)...)
	errors = append(errors, validateProbability("partition.smart_both_probability", c.Partition.SmartBothProbability)...)

	for _, fri := range c.Partition.FridayTopicPrefixes {
		for _, sat := range c.Partition.SaturdayTopicPrefixes {
			if strings.EqualFold(fri, sat) {
				errors = append(errors, ValidationError{
					Field:   "partition.friday_topic_prefixes",
					Value:   fri,
					Message: "is also listed in partition.saturday_topic_prefixes",
				})
			}
		}
	}

	return errors
}

// validateTags validates the TagsConfig
func (c *Config) validateTags() []ValidationError {
	var errors []ValidationError

	tags := []struct {
		field string
		value string
	}{
		{"tags.friday", c.Tags.Friday},
		{"tags.saturday", c.Tags.Saturday},
		{"tags.both", c.Tags.Both},
		{"tags.either", c.Tags.Either},
	}

	seen := make(map[string]string)
	for _, tag := range tags {
		if strings.TrimSpace(tag.value) == "" {
			errors = append(errors, ValidationError{Field: tag.field, Value: tag.value, Message: "must not be empty"})
			continue
		}
		if strings.ContainsAny(tag.value, " \t") {
			errors = append(errors, ValidationError{Field: tag.field, Value: tag.value, Message: "must not contain whitespace"})
			continue
		}
		if other, dup := seen[tag.value]; dup {
			errors = append(errors, ValidationError{
				Field:   tag.field,
				Value:   tag.value,
				Message: fmt.Sprintf("duplicates %s", other),
			})
			continue
		}
		seen[tag.value] = tag.field
	}

	return errors
}

// validateRoster validates the RosterConfig
func (c *Config) validateRoster() []ValidationError {
	var errors []ValidationError

	if c.Roster.TopicPrefix == "" {
		errors = append(errors, ValidationError{
			Field:   "roster.topic_prefix",
			Value:   c.Roster.TopicPrefix,
			Message: "must not be empty",
		})
	}
	if c.Roster.MinTopicPreference < 0 {
		errors = append(errors, ValidationError{
			Field:   "roster.min_topic_preference",
			Value:   c.Roster.MinTopicPreference,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
