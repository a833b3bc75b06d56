// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// fakeRunner records calls and returns configured responses.
type fakeRunner struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runPipedFunc  func(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeRunner) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if f.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (f *fakeRunner) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	if f.runPipedFunc != nil {
		return f.runPipedFunc(name, args, stdin, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		run      *fakeRunner
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			run: &fakeRunner{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			run: &fakeRunner{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name:    "neither available",
			run:     &fakeRunner{availableBins: map[string]bool{}, runnableCmds: map[string]bool{}},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			run: &fakeRunner{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			run: &fakeRunner{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.run)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("got runtime %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		mkRT    func(commandRunner) Runtime
		cmds    map[string]bool
		wantErr bool
	}{
		{
			name: "docker image exists",
			mkRT: func(r commandRunner) Runtime { return newDockerRuntime(r) },
			cmds: map[string]bool{"docker image inspect markitdown:latest": true},
		},
		{
			name:    "docker image not found",
			mkRT:    func(r commandRunner) Runtime { return newDockerRuntime(r) },
			cmds:    map[string]bool{},
			wantErr: true,
		},
		{
			name: "podman image exists",
			mkRT: func(r commandRunner) Runtime { return newPodmanRuntime(r) },
			cmds: map[string]bool{"podman image exists markitdown:latest": true},
		},
		{
			name:    "podman image not found",
			mkRT:    func(r commandRunner) Runtime { return newPodmanRuntime(r) },
			cmds:    map[string]bool{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := tt.mkRT(&fakeRunner{runnableCmds: tt.cmds})
			err := rt.ImageExists("markitdown:latest")
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRunPipesStdio(t *testing.T) {
	run := &fakeRunner{
		runPipedFunc: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			if name != "docker" {
				return errors.New("expected docker binary")
			}
			if strings.Join(args, " ") != "run --rm -i markitdown:latest" {
				return errors.New("unexpected args: " + strings.Join(args, " "))
			}
			data, _ := io.ReadAll(stdin)
			stdout.Write([]byte("converted: " + string(data)))
			return nil
		},
	}
	rt := newDockerRuntime(run)

	var out bytes.Buffer
	if err := rt.Run("markitdown:latest", strings.NewReader("pdf content"), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "converted: pdf content" {
		t.Errorf("got output %q", out.String())
	}
}

func TestRunFailureWrapped(t *testing.T) {
	run := &fakeRunner{
		runPipedFunc: func(string, []string, io.Reader, io.Writer) error {
			return errors.New("container exited with code 1")
		},
	}
	rt := newPodmanRuntime(run)
	err := rt.Run("markitdown:latest", strings.NewReader(""), io.Discard)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "markitdown:latest") {
		t.Errorf("error should name the image: %v", err)
	}
}
