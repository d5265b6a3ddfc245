// Command hivecouncil starts council sessions on a HiveCouncil service and
// follows them in the terminal.
package main

import (
	"os"

	"github.com/Iron-Ham/hivecouncil/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
