package filestorage

import "io"

// StoredFile describes a saved upload
type StoredFile struct {
	Path     string // path relative to the storage root
	Filename string // original filename
	FileSize int64
}

// FileStorage keeps uploaded import sources
type FileStorage interface {
	// Save writes r under subPath with a collision-free name derived from filename
	Save(r io.Reader, filename, subPath string) (*StoredFile, error)

	// Open returns a reader for a previously stored file
	Open(path string) (io.ReadCloser, error)

	// DeleteFile removes a stored file; missing files are not an error
	DeleteFile(path string) error
}
