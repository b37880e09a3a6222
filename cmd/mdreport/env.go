package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-mdreport"
)

// Converter is the part of *mdreport.Converter the CLI uses.
type Converter interface {
	ConvertFile(ctx context.Context, inputPath, outputPath string) (*mdreport.FileResult, error)
	Engine() string
	Close() error
}

// Compile-time interface implementation check.
var _ Converter = (*mdreport.Converter)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now          func() time.Time
	Stdout       io.Writer
	Stderr       io.Writer
	Getenv       func(string) string
	Environ      func() []string
	Getwd        func() (string, error)
	NewConverter func(opts ...mdreport.Option) (Converter, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		Getwd:   os.Getwd,
		NewConverter: func(opts ...mdreport.Option) (Converter, error) {
			return mdreport.NewConverter(opts...)
		},
	}
}
