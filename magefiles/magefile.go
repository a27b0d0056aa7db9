//go:build mage

// Package main provides build targets for kroeg-call using Mage.
//
// Usage:
//
//	mage build            Compile kroeg-call to bin/
//	mage test:all         Run every test
//	mage test:unit        Run tests with -short
//	mage test:postgres    Run the store tests against KROEG_TEST_POSTGRES_SERVER
//	mage lint             Run golangci-lint
//	mage clean            Remove build artifacts
//	mage install          Install kroeg-call to GOPATH/bin
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "kroeg-call"
	binaryDir  = "bin"
	cmdDir     = "./cmd/kroeg-call"
	versionVar = "github.com/mesh-intelligence/kroeg/internal/cli.Version"
)

// version describes the checkout, falling back to the development version.
func version() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || out == "" {
		return "0.1.0-dev"
	}
	return strings.TrimPrefix(out, "v")
}

// Build compiles the kroeg-call binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	ldflags := "-X " + versionVar + "=" + version()
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), filepath.Join(binaryDir, binaryName))
}
