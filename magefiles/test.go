//go:build mage

package main

import (
	"errors"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Unit runs the tests that need neither network nor external services.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "-short", "./...")
}

// Postgres runs the store and lease tests against a live PostgreSQL
// server named by KROEG_TEST_POSTGRES_SERVER.
func (Test) Postgres() error {
	if os.Getenv("KROEG_TEST_POSTGRES_SERVER") == "" {
		return errors.New("KROEG_TEST_POSTGRES_SERVER is not set")
	}
	return sh.RunV(binGo, "test", "-v", "./internal/sqlstore/...", "./internal/lease/...")
}
