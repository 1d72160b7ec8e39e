package ir

// Version constants for the recorded call format and the toolkit.
const (
	// IRVersion is the call record schema version.
	IRVersion = "1"

	// EngineVersion is the atom toolkit version.
	EngineVersion = "0.1.0"
)
