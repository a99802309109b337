package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mondaytools/monday-app-drive/commands"
)

var cli = []commands.Command{
	&commands.AuthoriseCmd,
	&commands.BackupCmd,
	&commands.ExportCmd,
	&commands.UploadCmd,
	&commands.VersionCmd,
}

var options = commands.Options{
	Debug: false,
}

func main() {
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	cmd, err := parse(flag.Args())
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	if cmd == nil {
		usage()
		os.Exit(1)
	}

	if err := cmd.Execute(&options); err != nil {
		log.Fatalf("%-5s %v", "ERROR", err)
	}
}

func parse(args []string) (commands.Command, error) {
	if len(args) == 0 {
		return nil, nil
	}

	if args[0] == "help" {
		help(args[1:])
		os.Exit(0)
	}

	for _, c := range cli {
		if c.Name() == args[0] {
			flagset := c.FlagSet()
			if err := flagset.Parse(args[1:]); err != nil {
				return nil, err
			}

			return c, nil
		}
	}

	return nil, fmt.Errorf("invalid command '%s'", args[0])
}

func help(args []string) {
	if len(args) > 0 {
		for _, c := range cli {
			if c.Name() == args[0] {
				c.Help()
				return
			}
		}
	}

	usage()
}

func usage() {
	fmt.Println()
	fmt.Println("  Usage: monday-app-drive [--debug] <command> [options]")
	fmt.Println()
	fmt.Println("  Commands:")
	fmt.Println()

	for _, c := range cli {
		fmt.Printf("    %-10s %s\n", c.Name(), c.Description())
	}

	fmt.Println()
	fmt.Println("  Use 'monday-app-drive help <command>' for command specific information")
	fmt.Println()
}
