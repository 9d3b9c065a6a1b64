package models

// ReleaseMap holds the key/value assignments of an os-release style file.
// Missing keys read as the empty string.
type ReleaseMap map[string]string

// Get returns the value for key, or "" when absent
func (m ReleaseMap) Get(key string) string {
	return m[key]
}
