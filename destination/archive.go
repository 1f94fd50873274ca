package destination

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Archive bundles files into a zip at archivePath. Entries are stored under their base names.
func Archive(fs afero.Fs, archivePath string, modified time.Time, files ...string) error {
	return writeFileAtomic(fs, archivePath, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, file := range files {
			if err := addToArchive(fs, zw, file, modified); err != nil {
				return err
			}
		}
		return zw.Close()
	})
}

func addToArchive(fs afero.Fs, zw *zip.Writer, file string, modified time.Time) error {
	src, err := fs.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s for archiving: %s", file, err)
	}
	defer src.Close()

	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:     filepath.Base(file),
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %s", file, err)
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("failed to archive %s: %s", file, err)
	}
	return nil
}
