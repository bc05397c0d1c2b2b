package config

import "testing"

func TestDefault(t *testing.T) {
	p := Default()
	if p.StorePath != DefaultStorePath {
		t.Errorf("StorePath = %q, want %q", p.StorePath, DefaultStorePath)
	}
	if p.NetworkDir == "" || p.SystemdDir == "" {
		t.Errorf("NetworkDir/SystemdDir must not be empty: %+v", p)
	}
	if p.KernelPath != DefaultKernelPath {
		t.Errorf("KernelPath = %q, want %q", p.KernelPath, DefaultKernelPath)
	}
}

func TestRunDirAndDerivedPaths(t *testing.T) {
	if got, want := RunDir("alpha"), "/run/tinyvmi-alpha"; got != want {
		t.Errorf("RunDir = %q, want %q", got, want)
	}
	if got, want := SocketPath("alpha"), "/run/tinyvmi-alpha/api.sock"; got != want {
		t.Errorf("SocketPath = %q, want %q", got, want)
	}
	if got, want := SerialPath("alpha"), "/run/tinyvmi-alpha/serial"; got != want {
		t.Errorf("SerialPath = %q, want %q", got, want)
	}
	if got, want := ConsolePath("alpha"), "/run/tinyvmi-alpha/console"; got != want {
		t.Errorf("ConsolePath = %q, want %q", got, want)
	}
}
