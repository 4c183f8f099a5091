// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of the toolchain.
const Current = "0.1.0"

// SchemaVersion is the expected value of the metadata.version row in the
// persistence store. A store whose stored version does not match this value
// fails to connect rather than silently operating against a mismatched
// schema.
const SchemaVersion = "1"
