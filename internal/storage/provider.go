// Package storage keeps the raw bytes of uploaded documents on disk.
package storage

// Provider stores uploaded files by flat name (no sub-directories).
type Provider interface {
	// Write atomically writes content under name.
	Write(name string, content []byte) error
	// Delete removes the named file.
	Delete(name string) error
	// Path resolves name to an absolute path suitable for serving.
	Path(name string) (string, error)
}
