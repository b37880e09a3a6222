package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-mdreport"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdreport [flags]")
	fmt.Fprintln(w, "       mdreport <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Converts %s into %s\n", mdreport.InputFileName, mdreport.OutputFileName)
	fmt.Fprintln(w, "in the current directory (or the one given with -C).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  doctor     Check Chrome and the environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -C, --dir <path>          Directory holding the report (default: current)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintf(w, "      --engine <name>       PDF engine: %s (default: chrome)\n", strings.Join(mdreport.Engines(), ", "))
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF generation timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --html                Also write the intermediate HTML")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show timing and effective config")
	fmt.Fprintln(w, "      --version             Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDREPORT_CONFIG, MDREPORT_ENGINE, MDREPORT_TIMEOUT")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN, ROD_NO_SANDBOX (Chrome engine)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdreport help <command>' for details on a specific command.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: mdreport doctor [--json] [-C <dir>] [-c <config>]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that Chrome is available and the environment can render PDFs.")
		fmt.Fprintln(env.Stdout, "The engine is read from the config file and MDREPORT_ENGINE, so a")
		fmt.Fprintln(env.Stdout, "missing Chrome is only an error when Chrome would be used.")
		fmt.Fprintln(env.Stdout, "Exits 1 when a required check fails.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdreport version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdreport help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
