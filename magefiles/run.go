//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed with the sample config.
func (Run) Engine() error {
	fmt.Println("Run engine...")
	return runTestbed()
}

// Runs the testbed for a fixed number of frames with CPU profiling on.
func (Run) Profile() error {
	fmt.Println("Run engine with profiling...")
	return runTestbed("-frames", "600", "-profile", "cpu")
}
