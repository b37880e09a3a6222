package main

import (
	"context"
	"fmt"
	"io"

	"pkt.systems/version"
)

// runMain dispatches the subcommand and returns the exit code.
// Without a subcommand, the report is converted.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) > 0 {
		switch args[0] {
		case "doctor":
			return runDoctorCmd(args[1:], env)
		case "version":
			printVersion(env.Stdout)
			return ExitSuccess
		case "help":
			return runHelp(args[1:], env)
		}
	}

	f, positional, err := parseFlags(args)
	if err != nil {
		reportError(env, err, nil)
		return exitCodeFor(err)
	}
	if f.help {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if f.version {
		printVersion(env.Stdout)
		return ExitSuccess
	}
	if len(positional) > 0 {
		err := usageError(fmt.Errorf("unexpected argument %q (input and output names are fixed)", positional[0]))
		reportError(env, err, nil)
		return exitCodeFor(err)
	}

	return runConvert(ctx, f, env)
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, version.Module(), version.Current())
}
