package port

import "context"

// FileStorage abstracts storage of uploaded supporting images and payment
// screenshots
type FileStorage interface {
	// Save writes content under the given relative path
	Save(ctx context.Context, path string, content []byte) error

	// Read returns the content stored at the relative path
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at the relative path
	Exists(ctx context.Context, path string) bool

	// FullPath resolves a relative path inside the storage root
	FullPath(path string) string
}
