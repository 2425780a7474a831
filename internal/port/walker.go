package port

// FileWalker lists the source files under a root.
type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

// FileInfo describes a file found by a FileWalker.
type FileInfo struct {
	Path    string
	Rel     string
	ModTime int64
	Size    int64
}
