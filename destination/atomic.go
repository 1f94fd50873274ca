package destination

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"github.com/datazip-inc/slicer/utils"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/spf13/afero"
)

// writeFileAtomic writes path through a temporary file in the same directory and renames it into
// place, so readers only ever see a complete file.
func writeFileAtomic(fs afero.Fs, path string, fill func(w io.Writer) error) error {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), fmt.Sprintf(".%s.*.tmp", filepath.Base(path)))
	if err != nil {
		return &EmissionError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	// every step runs so the temp file is always closed before it is discarded
	buffered := bufio.NewWriter(tmp)
	werr := utils.ErrExecSequential(
		func() error { return fill(buffered) },
		utils.ErrExecFormat("flush: %s", buffered.Flush),
		utils.ErrExecFormat("sync: %s", tmp.Sync),
		utils.ErrExecFormat("close: %s", tmp.Close),
	)
	if werr != nil {
		discard(fs, tmpName)
		return &EmissionError{Op: "write", Path: path, Err: werr}
	}

	if err := fs.Rename(tmpName, path); err != nil {
		discard(fs, tmpName)
		return &EmissionError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

func discard(fs afero.Fs, paths ...string) {
	for _, path := range paths {
		if err := fs.Remove(path); err != nil {
			logger.Warnf("failed to remove %s: %s", path, err)
		}
	}
}
