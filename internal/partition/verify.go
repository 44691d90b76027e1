package partition

import (
	"github.com/Iron-Ham/pcsplit/internal/committee"
	"github.com/Iron-Ham/pcsplit/internal/errors"
)

// VerifyGroup checks that every member of a day's group is allowed there:
// it carries that day's tag, the Both tag or the Either tag.
func VerifyGroup(group []*committee.Member, day Day, tags Tags) error {
	var errs []error
	for _, m := range group {
		if m.HasTag(tags.For(day)) || m.HasTag(tags.Both) || m.HasTag(tags.Either) {
			continue
		}
		errs = append(errs, errors.NewPartitionError("member not allowed in group", errors.ErrTagMismatch).
			WithDay(day.String()).
			WithMember(m.Name))
	}
	return errors.Join(errs...)
}

// VerifyComplete checks that every primary committee member in members
// sits in at least one group, and that Either members sit in only one.
func VerifyComplete(friday, saturday, members []*committee.Member, tags Tags) error {
	onFriday := memberIDs(friday)
	onSaturday := memberIDs(saturday)

	var errs []error
	for _, m := range members {
		if m.IsSecondary || m.Kind != committee.Reviewer {
			continue
		}
		fri, sat := onFriday.Has(m.ID), onSaturday.Has(m.ID)
		switch {
		case !fri && !sat:
			errs = append(errs, errors.NewPartitionError("member in neither group", errors.ErrMemberMissing).
				WithMember(m.Name))
		case fri && sat && m.HasTag(tags.Either) && !m.HasTag(tags.Both):
			errs = append(errs, errors.NewPartitionError("either member placed on both days", errors.ErrTagMismatch).
				WithMember(m.Name))
		}
	}
	return errors.Join(errs...)
}
