package ir

// Version constants for the wire model and the client.
const (
	// WireVersion is the save snapshot format version understood by the client.
	WireVersion = "1"

	// ClientVersion is the reelsync client version.
	ClientVersion = "0.3.0"
)
