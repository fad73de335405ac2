package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/mirrord/cmd/util"
	"github.com/sidkik/mirrord/pkg/config"
	"github.com/sidkik/mirrord/pkg/errors"
)

func TestPrintConfig(t *testing.T) {
	var out bytes.Buffer
	stdout = &out
	defer func() { stdout = os.Stdout }()

	flags := util.MirrorFlags{Mirror: config.Mirror{
		Source:   "/src",
		Replica:  "/replica",
		Interval: 30,
		Log:      "/var/log/mirrord",
	}}
	require.NoError(t, printConfig(flags, ""))
	assert.Equal(t, `digest: md5
interval: 30
log: /var/log/mirrord
replica: /replica
source: /src
version: v1alpha1
workers: 1
`, out.String())
}

func TestWriteConfig(t *testing.T) {
	stdout = &bytes.Buffer{}
	defer func() { stdout = os.Stdout }()

	path := filepath.Join(t.TempDir(), "mirror.yaml")
	flags := util.MirrorFlags{Mirror: config.Mirror{
		Source:   "/src",
		Replica:  "/replica",
		Interval: 30,
		Log:      "/var/log/mirrord",
	}}
	require.NoError(t, printConfig(flags, path))

	// The written file resolves to the same configuration.
	fromFile, err := util.MirrorFlags{ConfigPath: path}.Resolve()
	require.NoError(t, err)
	fromFlags, err := flags.Resolve()
	require.NoError(t, err)
	assert.Equal(t, fromFlags, fromFile)
}

func TestPrintInvalidConfig(t *testing.T) {
	err := printConfig(util.MirrorFlags{Mirror: config.Mirror{Source: "/src"}}, "")
	_, ok := errors.GetFriendlyMessage(err)
	assert.True(t, ok)
}
