package enrollment

// CardDetails is the subset of the issuing provider's card object the
// product surfaces to the holder.
type CardDetails struct {
	Token    string
	LastFour string
	ExpMonth string
	ExpYear  string
	State    string
	Type     string
}

// Result is a completed enrollment: the provider-side account holder plus
// the virtual card issued under it.
type Result struct {
	AccountToken string
	Card         CardDetails
}

// AuthorizationSimulation is the provider's receipt for a simulated
// authorization against a sandbox card.
type AuthorizationSimulation struct {
	Token              string
	DebuggingRequestID string
}
