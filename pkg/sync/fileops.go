package sync

import (
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/mirrord/pkg/errors"
)

// dirMode is the mode used for directories created in the replica.
const dirMode = 0755

// copyFile copies the contents, mode and modification time of `src` to `dst`,
// overwriting `dst` if it exists. It returns the number of bytes copied.
func copyFile(fs afero.Fs, src, dst string) (int64, error) {
	srcFile, err := fs.Open(src)
	if err != nil {
		return 0, errors.WithContext(err, "open source")
	}
	defer srcFile.Close()

	fileInfo, err := srcFile.Stat()
	if err != nil {
		return 0, errors.WithContext(err, "stat")
	}

	dstFile, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileInfo.Mode().Perm())
	if err != nil {
		return 0, errors.WithContext(err, "open destination")
	}

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		discardPartial(fs, dst)
		return n, errors.WithContext(err, "copy")
	}

	if err := dstFile.Close(); err != nil {
		discardPartial(fs, dst)
		return n, errors.WithContext(err, "close destination")
	}

	if err := fs.Chmod(dst, fileInfo.Mode().Perm()); err != nil {
		return n, errors.WithContext(err, "set file mode")
	}

	// Change the modification time as the last step so that it doesn't get
	// reset by other file operations.
	if err := fs.Chtimes(dst, time.Now(), fileInfo.ModTime()); err != nil {
		return n, errors.WithContext(err, "set file modtime")
	}
	return n, nil
}

// discardPartial removes a destination file whose copy didn't complete.
func discardPartial(fs afero.Fs, dst string) {
	if err := removeFile(fs, dst); err != nil {
		log.WithError(err).WithField("path", dst).Debug("Failed to remove partial copy")
	}
}

// removeFile removes a single non-directory entry. An entry that's already
// gone counts as removed.
func removeFile(fs afero.Fs, path string) error {
	if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// replaceFile removes `dst` and then copies `src` in its place.
func replaceFile(fs afero.Fs, src, dst string) (int64, error) {
	if err := removeFile(fs, dst); err != nil {
		return 0, errors.WithContext(err, "remove stale copy")
	}
	return copyFile(fs, src, dst)
}
