package commands

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"
)

const APP = "monday-app-drive"

// Options are the global command line options, shared by all subcommands.
type Options struct {
	Debug bool
}

// Command is the interface implemented by all monday-app-drive subcommands.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Help()
	FlagSet() *flag.FlagSet
	Execute(args ...any) error
}

type command struct {
	workdir     string
	credentials string
	debug       bool
}

func (c *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&c.workdir, "workdir", c.workdir, "Directory for working files (cached tokens, retained exports)")
	flagset.StringVar(&c.credentials, "credentials", c.credentials, "Path for the Google OAuth2 'credentials.json' file. Defaults to application default credentials")

	return flagset
}

// retry reinvokes f up to attempts times, doubling the delay between
// attempts. The first error is not delayed.
func retry(ctx context.Context, attempts int, delay time.Duration, f func() error) error {
	var err error

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}

			delay *= 2
		}

		if err = f(); err == nil {
			return nil
		}
	}

	return err
}

func helpOptions(flagset *flag.FlagSet) {
	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	fmt.Println()
	fmt.Println("    --debug          Displays vaguely useful internal information")
}

func debugf(format string, args ...any) {
	log.Printf("%-5s %s", "DEBUG", fmt.Sprintf(format, args...))
}

func infof(format string, args ...any) {
	log.Printf("%-5s %s", "INFO", fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Printf("%-5s %s", "WARN", fmt.Sprintf(format, args...))
}
