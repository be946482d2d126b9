package credentials

// Repo is a key-value backend for a single tier.
type Repo interface {
	// Get returns the value for key and whether it exists
	Get(key string) (string, bool, error)

	// Put stores value under key, replacing any existing value
	Put(key, value string) error

	// Delete removes key. Deleting a missing key is not an error
	Delete(key string) error
}
