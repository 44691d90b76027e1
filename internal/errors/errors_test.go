package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.severity.String())
		})
	}
}

func TestInputError(t *testing.T) {
	err := NewInputError("roster header", ErrMissingColumn).
		WithFile("pc.csv").WithLine(1).WithField("email")

	assert.Equal(t, "input error [file=pc.csv, line=1, field=email]: roster header: missing column", err.Error())
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.ErrorIs(t, err, &InputError{})
	assert.NotErrorIs(t, err, ErrMalformedRecord)
	assert.Equal(t, SeverityError, err.Severity())
	assert.True(t, err.IsUserFacing())
}

func TestInputError_NoContext(t *testing.T) {
	err := NewInputError("no records", nil)
	assert.Equal(t, "input error: no records", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestCrossReferenceError(t *testing.T) {
	err := NewCrossReferenceError("declared conflict not on roster", ErrMemberNotFound).
		WithRecord("paper 17").WithField("pc_conflicts").WithKey("x@example.org")

	assert.Equal(t,
		"cross-reference error [record=paper 17, field=pc_conflicts, key=x@example.org]: declared conflict not on roster: member not found",
		err.Error())
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.ErrorIs(t, err, &CrossReferenceError{})
	assert.Equal(t, SeverityCritical, err.Severity())
	assert.True(t, IsFatal(err))
	assert.True(t, IsFatal(Wrap(err, "linking papers")))
}

func TestPartitionError(t *testing.T) {
	err := NewPartitionError("verify group", ErrTagMismatch).WithDay("friday").WithMember("JANE DOE")

	assert.Equal(t, "partition error [day=friday, member=JANE DOE]: verify group: member tag does not allow group", err.Error())
	assert.ErrorIs(t, err, ErrTagMismatch)
	assert.NotErrorIs(t, err, ErrMemberMissing)
	assert.False(t, IsFatal(err))

	var pe *PartitionError
	assert.ErrorAs(t, fmt.Errorf("outer: %w", err), &pe)
	assert.Equal(t, "friday", pe.Day)
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("member", "JANE DOE")
	assert.Equal(t, "member 'JANE DOE' not found", err.Error())
	assert.ErrorIs(t, err, &NotFoundError{})

	err = err.WithCause(ErrMemberNotFound)
	assert.Equal(t, "member 'JANE DOE' not found: member not found", err.Error())
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("trials must be positive").WithField("partition.member_trials").WithValue(0)

	assert.Equal(t, "validation error [field=partition.member_trials, value=0]: trials must be positive", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, &ValidationError{})
	assert.Equal(t, SeverityWarning, GetSeverity(err))
}

func TestClassification_PlainErrors(t *testing.T) {
	plain := New("boom")

	assert.False(t, IsUserFacing(plain))
	assert.False(t, IsUserFacing(nil))
	assert.Equal(t, SeverityError, GetSeverity(plain))
	assert.Equal(t, SeverityDebug, GetSeverity(nil))
	assert.False(t, IsFatal(plain))
	assert.False(t, IsFatal(nil))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ctx"))
	assert.NoError(t, Wrapf(nil, "ctx %d", 1))

	err := Wrapf(NewInputError("bad", ErrMalformedRecord), "load %s", "pc.csv")
	assert.Equal(t, "load pc.csv: input error: bad: malformed record", err.Error())
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.True(t, IsUserFacing(err))
}
