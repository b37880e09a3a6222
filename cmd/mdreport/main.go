// Command mdreport renders ETL_Production_Deployment_Lessons_Learned.md
// into a styled PDF report next to it.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
	"pkt.systems/version"
)

func init() {
	version.SetDefaultModule("github.com/alnah/go-mdreport")
}

func main() {
	env := DefaultEnv()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS is invalid, in
	// which case the runtime default applies.
	if wantsVerbose(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args[1:], env)
	stop()
	os.Exit(code)
}

// wantsVerbose peeks at the arguments before they are parsed so the
// GOMAXPROCS line can be logged.
func wantsVerbose(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" || a == "--verbose=true" {
			return true
		}
	}
	return false
}
