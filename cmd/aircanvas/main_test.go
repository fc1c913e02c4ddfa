package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/aircanvas/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
[camera]
device = 2
flip = true

[voice]
helper = "from-file"
`)

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{
		"--config", path,
		"--camera", "1",
		"--no-flip",
		"--addr", "127.0.0.1:9000",
		"--no-voice",
		"--no-journal",
		"--headless",
	}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	// The options are bound inside newRootCmd; read them back through the flags.
	opts := options{configPath: path, camera: 1, noFlip: true, addr: "127.0.0.1:9000", noVoice: true, noJournal: true, headless: true}
	cfg, err := loadConfig(cmd, &opts, newLogger(&bytes.Buffer{}, 0))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Camera.Device != 1 || cfg.Camera.Flip {
		t.Errorf("camera = %+v, want device 1 without flip", cfg.Camera)
	}
	if !cfg.Server.Enabled || cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Voice.Enabled || cfg.Voice.Helper != "from-file" {
		t.Errorf("voice = %+v", cfg.Voice)
	}
	if cfg.Store.Path != "" || !cfg.UI.Headless {
		t.Errorf("store %q, ui %+v", cfg.Store.Path, cfg.UI)
	}
}

func TestLoadConfig_FileOnly(t *testing.T) {
	path := writeConfig(t, `
[camera]
device = 3
`)
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg, err := loadConfig(cmd, &options{configPath: path}, newLogger(&bytes.Buffer{}, 0))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Camera.Device != 3 {
		t.Errorf("device = %d, want 3 from file", cfg.Camera.Device)
	}
	if !cfg.Camera.Flip || !cfg.Voice.Enabled {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := writeConfig(t, `
[canvas]
colour = "PURPLE"
`)
	if _, err := execute(t, "sessions", "--config", path); err == nil {
		t.Error("unknown colour should be rejected")
	}
}

func TestSessionsCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")
	cfgPath := writeConfig(t, "")

	out, err := execute(t, "sessions", "--config", cfgPath, "--db", dbPath)
	if err != nil {
		t.Fatalf("sessions error = %v", err)
	}
	if !strings.Contains(out, "no sessions") {
		t.Errorf("empty journal output = %q", out)
	}

	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	sess := &store.Session{Width: 640, Height: 480}
	st.Sessions().Create(sess)
	st.Events().Append(&store.Event{SessionID: sess.ID, Kind: store.EventStroke, Detail: "PEN"})
	st.Events().Append(&store.Event{SessionID: sess.ID, Kind: store.EventVoice, Detail: "blue"})
	st.Sessions().End(sess.ID, "voice exit")
	st.Close()

	out, err = execute(t, "sessions", "--config", cfgPath, "--db", dbPath)
	if err != nil {
		t.Fatalf("sessions error = %v", err)
	}
	for _, want := range []string{sess.ID, "640x480", "1 strokes", "1 voice", "voice exit"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "sessions", "show", sess.ID, "--config", cfgPath, "--db", dbPath)
	if err != nil {
		t.Fatalf("sessions show error = %v", err)
	}
	for _, want := range []string{"stroke", "PEN", "voice", "blue"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "sessions", "rm", sess.ID, "--config", cfgPath, "--db", dbPath); err != nil {
		t.Fatalf("sessions rm error = %v", err)
	}
	if _, err := execute(t, "sessions", "show", sess.ID, "--config", cfgPath, "--db", dbPath); err == nil {
		t.Error("show after rm should fail")
	}
}

func TestSessionsCommand_Limit(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")
	cfgPath := writeConfig(t, "")

	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	for i := 0; i < 25; i++ {
		if err := st.Sessions().Create(&store.Session{Width: 640, Height: 480}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	st.Close()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", nil, "20 session(s)"},
		{"explicit", []string{"-n", "5"}, "5 session(s)"},
		{"zero lists all", []string{"-n", "0"}, "25 session(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"sessions", "--config", cfgPath, "--db", dbPath}, tt.args...)
			out, err := execute(t, args...)
			if err != nil {
				t.Fatalf("sessions error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}
