//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the testbed binary into bin/.
func (Build) Binary() error {
	mg.Deps(Build.Tidy)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/anima", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go mod tidy.
func (Build) Tidy() error {
	return goTidy()
}

// Runs the unit tests of every package.
func (Build) Test() error {
	return goTool("test", "-race")
}

// Runs go vet on every package.
func (Build) Lint() error {
	return goTool("vet")
}
