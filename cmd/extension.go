package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

const (
	EnvBookFile   = "TB_BOOK_FILE"
	EnvPricesFile = "TB_PRICES_FILE"
	EnvFeesFile   = "TB_FEES_FILE"
	EnvVerbose    = "TB_VERBOSE"
)

// RunExtension attempts to find and execute an external tb-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "tb-" + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log := logger()
		log.Debug().Err(err).Str("command", externalCmdName).Msg("no extension found in PATH")
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Global flags are passed as environment variables.
	cmd.Env = append(os.Environ(),
		EnvBookFile+"="+*bookFile,
		EnvPricesFile+"="+*pricesFile,
		EnvFeesFile+"="+*feesFile,
		EnvVerbose+"="+strconv.FormatBool(*Verbose),
	)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
