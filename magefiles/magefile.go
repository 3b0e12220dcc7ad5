// Package main provides build targets for the datagrid project using Mage.
//
// Usage:
//
//	mage build      Compile gridctl to bin/
//	mage test       Run all tests
//	mage testUnit   Run tests in short mode
//	mage bench      Run the table benchmarks
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install gridctl to GOPATH/bin
//	mage stats      Print Go lines of code per package
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "gridctl"
	binaryDir  = "bin"
	cmdDir     = "./cmd/gridctl"
)

// Build compiles the gridctl binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// TestUnit runs the tests in short mode, skipping the slower CLI and
// store round trips.
func TestUnit() error {
	return sh.RunV(binGo, "test", "-short", "./...")
}

// Bench runs the benchmarks of the table pipeline.
func Bench() error {
	return sh.RunV(binGo, "test", "-run", "^$", "-bench", ".", "-benchmem", "./internal/grid/...")
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
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
