package common

// WipeByteArray overwrites b with zeros. Used to drop passwords from memory
// once a request has been built. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
