package output

// Metrics counts coordinator activity. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ChallengeSubmitted()
	ChallengeAccepted()
	ChallengeRejected()
	MatchAbandoned()
	PanelCreated(panelType string)
	SweepRun(panelsDeleted int64)
}
