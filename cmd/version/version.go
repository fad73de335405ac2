package version

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sidkik/mirrord/pkg/version"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of mirrord",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(stdout, "mirrord %s (%s %s/%s)\n", version.String(),
				runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
