package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// Configure sets up the standard logger. Diagnostics go to stderr so they
// never mix with command output.
func Configure(level string) error {
	return ConfigureOutput(os.Stderr, level)
}

// ConfigureOutput is Configure with an explicit writer
func ConfigureOutput(out io.Writer, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetFormatter(&log.TextFormatter{ForceColors: isTerminal(out), FullTimestamp: true})
	log.SetOutput(out)
	log.SetLevel(lvl)
	return nil
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
