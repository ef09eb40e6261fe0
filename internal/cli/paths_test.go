package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	oldXdg, hadXdg := os.LookupEnv("XDG_CACHE_HOME")
	os.Setenv("XDG_CACHE_HOME", customCache)
	defer func() {
		if hadXdg {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		} else {
			os.Unsetenv("XDG_CACHE_HOME")
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	want := filepath.Join(customCache, appName)
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirDefault(t *testing.T) {
	oldXdg, hadXdg := os.LookupEnv("XDG_CACHE_HOME")
	os.Unsetenv("XDG_CACHE_HOME")
	defer func() {
		if hadXdg {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
}

func TestNewRunnerNoCache(t *testing.T) {
	c := &CLI{Logger: log.New(os.Stderr)}

	runner, err := c.newRunner(true)
	if err != nil {
		t.Fatalf("newRunner(true) error: %v", err)
	}
	if runner == nil {
		t.Fatal("newRunner(true) returned nil runner")
	}
	defer runner.Close()
}

func TestNewRunnerFileCache(t *testing.T) {
	customCache := t.TempDir()
	oldXdg, hadXdg := os.LookupEnv("XDG_CACHE_HOME")
	os.Setenv("XDG_CACHE_HOME", customCache)
	defer func() {
		if hadXdg {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		} else {
			os.Unsetenv("XDG_CACHE_HOME")
		}
	}()

	c := &CLI{Logger: log.New(os.Stderr)}

	runner, err := c.newRunner(false)
	if err != nil {
		t.Fatalf("newRunner(false) error: %v", err)
	}
	if runner == nil {
		t.Fatal("newRunner(false) returned nil runner")
	}
	defer runner.Close()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("newRunner(false) should have created cache dir %q: %v", dir, err)
	}
}
