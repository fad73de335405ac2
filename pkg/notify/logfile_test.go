package notify

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockLogFs(t *testing.T) afero.Fs {
	oldFs, oldNow := fs, now
	t.Cleanup(func() {
		fs, now = oldFs, oldNow
	})

	fs = afero.NewMemMapFs()
	now = func() time.Time {
		return time.Date(2019, 11, 10, 12, 0, 0, 0, time.UTC)
	}
	return fs
}

func TestLogPath(t *testing.T) {
	mockFs := mockLogFs(t)
	require.NoError(t, mockFs.MkdirAll("/logs", 0755))
	require.NoError(t, afero.WriteFile(mockFs, "/existing.log", nil, 0644))

	path, err := LogPath("/logs")
	assert.NoError(t, err)
	assert.Equal(t, "/logs/log-2019-11-10", path)

	path, err = LogPath("/existing.log")
	assert.NoError(t, err)
	assert.Equal(t, "/existing.log", path)

	path, err = LogPath("/new.log")
	assert.NoError(t, err)
	assert.Equal(t, "/new.log", path)
}

func TestOpenLogAppends(t *testing.T) {
	mockFs := mockLogFs(t)
	require.NoError(t, mockFs.MkdirAll("/logs", 0755))
	require.NoError(t, afero.WriteFile(mockFs, "/logs/log-2019-11-10", []byte("earlier\n"), 0644))

	logFile, err := OpenLog("/logs")
	require.NoError(t, err)
	assert.Equal(t, "/logs/log-2019-11-10", logFile.Path)

	logFile.WithField("size", "1 B").Info("File creation: /replica/a")
	logFile.Debug("dropped")
	require.NoError(t, logFile.Close())

	contents, err := afero.ReadFile(mockFs, "/logs/log-2019-11-10")
	require.NoError(t, err)
	assert.Regexp(t, `^earlier
time="\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}" level=info msg="File creation: /replica/a" size="1 B"
$`, string(contents))
}

func TestOpenLogFailure(t *testing.T) {
	mockLogFs(t)
	fs = afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := OpenLog("/logs/mirrord.log")
	assert.Error(t, err)
}

func TestHook(t *testing.T) {
	target, targetHook := logrusTest.NewNullLogger()
	source, _ := logrusTest.NewNullLogger()
	source.AddHook(NewHook(target, logrus.WarnLevel))

	source.Info("not mirrored")
	source.WithField("pass", "id").Warn("mirrored")
	source.Error("error")
	func() {
		defer func() {
			recover()
		}()
		source.Panic("panic")
	}()

	entries := targetHook.AllEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "mirrored", entries[0].Message)
	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, "id", entries[0].Data["pass"])
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, "panic", entries[2].Message)
	assert.Equal(t, logrus.ErrorLevel, entries[2].Level)
}
