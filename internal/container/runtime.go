// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container detects and drives a local container runtime. The
// markitdown conversion backend pipes PDFs through a container image and
// works with either docker or podman.
package container

import (
	"fmt"
	"io"
	"os/exec"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime provides the container operations the conversion backend needs:
// availability and image checks, and piped execution.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available() bool

	// ImageExists returns nil when the named image exists locally.
	ImageExists(image string) error

	// Run executes a container with the given image, piping stdin and stdout.
	Run(image string, stdin io.Reader, stdout io.Writer) error
}

// commandRunner abstracts command execution so tests can fake binaries.
type commandRunner interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osRunner is the production runner backed by os/exec.
type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osRunner) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (osRunner) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

// cliRuntime implements Runtime for one container binary. Docker and
// podman share the logic and differ only in binary name and the
// subcommand used to check image existence.
type cliRuntime struct {
	bin           string
	imageCheckCmd []string
	run           commandRunner
}

func (r *cliRuntime) Name() string { return r.bin }

func (r *cliRuntime) Available() bool {
	if _, err := r.run.LookPath(r.bin); err != nil {
		return false
	}
	return r.run.RunSilent(r.bin, "info") == nil
}

func (r *cliRuntime) ImageExists(image string) error {
	args := append(append([]string{}, r.imageCheckCmd...), image)
	if err := r.run.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *cliRuntime) Run(image string, stdin io.Reader, stdout io.Writer) error {
	if err := r.run.RunPiped(r.bin, []string{"run", "--rm", "-i", image}, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

func newDockerRuntime(run commandRunner) *cliRuntime {
	return &cliRuntime{bin: binDocker, imageCheckCmd: []string{"image", "inspect"}, run: run}
}

func newPodmanRuntime(run commandRunner) *cliRuntime {
	return &cliRuntime{bin: binPodman, imageCheckCmd: []string{"image", "exists"}, run: run}
}

// DetectRuntime tries docker first, then podman. It fails when neither is
// available.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(osRunner{})
}

func detectRuntime(run commandRunner) (Runtime, error) {
	docker := newDockerRuntime(run)
	if docker.Available() {
		return docker, nil
	}

	podman := newPodmanRuntime(run)
	if podman.Available() {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
