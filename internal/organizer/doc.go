// Package organizer sorts the files under a root directory into one subfolder
// per lowercase extension.
//
// Run collects every regular file below the root before touching anything,
// hands each file to a Mover on a fixed pool of workers, and tallies the
// successful moves per extension. Dry runs take the same path and report the
// planned moves instead of renaming, so both modes produce the same summary.
package organizer
