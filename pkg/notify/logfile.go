package notify

import (
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/mirrord/pkg/errors"
)

// Variables mocked for unit testing.
var (
	fs  = afero.NewOsFs()
	now = time.Now
)

// dateLayout names the daily log files, e.g. `log-2019-11-10`.
const dateLayout = "2006-01-02"

// LogFile is a logger that appends to a file on disk.
type LogFile struct {
	*log.Logger

	// Path is the file the logger writes to.
	Path string

	file afero.File
}

// LogPath returns the file that logs for `dest` are written to. If `dest` is
// an existing directory, the logs go to a file within it named after the
// current date. Otherwise, `dest` is the log file itself.
func LogPath(dest string) (string, error) {
	fi, err := fs.Stat(dest)
	switch {
	case err == nil && fi.IsDir():
		return filepath.Join(dest, "log-"+now().Format(dateLayout)), nil
	case err == nil || os.IsNotExist(err):
		return dest, nil
	default:
		return "", errors.WithContext(err, "stat")
	}
}

// OpenLog opens the log file for `dest`, creating it if necessary. Existing
// logs are appended to.
func OpenLog(dest string) (*LogFile, error) {
	path, err := LogPath(dest)
	if err != nil {
		return nil, err
	}

	f, err := fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.NewFriendlyError("Failed to open log file %q.\n\n%s", path, err)
	}

	logger := log.New()
	logger.SetOutput(f)
	logger.SetLevel(log.InfoLevel)
	logger.SetFormatter(&log.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return &LogFile{Logger: logger, Path: path, file: f}, nil
}

// Close closes the underlying file. The logger must not be used afterwards.
func (l *LogFile) Close() error {
	return l.file.Close()
}
