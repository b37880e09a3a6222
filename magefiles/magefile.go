//go:build mage

// Package main contains Mage build targets for mdreport.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "mdreport"
	cmdPkg  = "./cmd/mdreport"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-trimpath", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Integration runs the tests that need a local Chrome.
func Integration() error {
	return sh.RunV("go", "test", "-tags=integration", "-count=1", "-timeout=5m", "./...")
}

// Bench runs the pipeline benchmarks.
func Bench() error {
	return sh.RunV("go", "test", "-tags=bench", "-run=^$", "-bench=.", "-benchmem", "./internal/pipeline/")
}

// Lint runs vet, staticcheck and gosec through the module tool block.
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	if err := sh.RunV("go", "tool", "staticcheck", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "gosec", "-quiet", "./...")
}

// Check runs Lint then Test.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
