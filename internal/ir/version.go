package ir

// Version constants for the invocation log schema and engine.
const (
	// IRVersion is the invocation record schema version.
	IRVersion = "1"

	// EngineVersion is the calculator engine version.
	EngineVersion = "0.1.0"
)
