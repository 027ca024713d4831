package store

// Prefixer returns a key builder for a namespace. Parts are joined to the
// prefix with slashes.
func Prefixer(prefix string) func(parts ...string) []byte {
	return func(parts ...string) []byte {
		n := len(prefix)
		for _, p := range parts {
			n += len(p) + 1
		}
		k := make([]byte, 0, n)
		k = append(k, prefix...)
		for _, p := range parts {
			k = append(k, '/')
			k = append(k, p...)
		}
		return k
	}
}
