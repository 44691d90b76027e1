// Package report writes and reads the files exchanged with the review
// system and the program chairs: group listings, paper listings, conflict
// update sheets, tag updates, spreadsheets and the collaborator review
// file. It also renders the terminal summary of a partition.
//
// Every text format that the tool reads back is written by this package, so
// the writers and readers are kept next to each other.
package report
