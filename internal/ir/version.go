package ir

// FormatVersion is the version of the canonical encoding and of the
// fingerprints computed over it. Stored fingerprints are only comparable
// between runs with the same FormatVersion.
const FormatVersion = "1"
