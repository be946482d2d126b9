package credentials

// Tier is the durability class a credential is held in.
type Tier int

const (
	// TierSession lives as long as the process (the browser tab equivalent).
	TierSession Tier = iota
	// TierPersistent survives restarts.
	TierPersistent
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierSession:
		return "session"
	case TierPersistent:
		return "persistent"
	default:
		return "unknown"
	}
}

// Other returns the opposite tier.
func (t Tier) Other() Tier {
	if t == TierPersistent {
		return TierSession
	}
	return TierPersistent
}

// TierFor picks the tier for a login: persistent when the user asked to be remembered.
func TierFor(remember bool) Tier {
	if remember {
		return TierPersistent
	}
	return TierSession
}
