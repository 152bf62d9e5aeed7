package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput keeps one file per exchange in a dump directory. The
// directory is created once and never cleared, so dumps of several runs
// sit next to each other.
type FilesystemOutput struct {
	dir string
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{dir: dir}, nil
}

// Write stores contents under id, a failed write only costs that dump.
func (o FilesystemOutput) Write(id string, contents string) {
	path := filepath.Join(o.dir, filepath.Base(id))
	err := os.WriteFile(path, []byte(contents), 0644)
	if err != nil {
		slog.Warn("failed to write exchange dump", "path", path, "err", err)
	}
}
