package app

import (
	"testing"
	"time"
)

func TestNewCommand(t *testing.T) {
	started := time.Date(2024, 6, 15, 14, 30, 45, 123000000, time.UTC)

	tests := []struct {
		name    string
		command string
		args    string
	}{
		{
			name:    "with args",
			command: "rename",
			args:    "readme NOTES.md",
		},
		{
			name:    "empty args",
			command: "tree",
			args:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCommand(tt.command, tt.args, started)

			if cmd.Name != tt.command {
				t.Errorf("Name = %q, want %q", cmd.Name, tt.command)
			}
			if cmd.Args != tt.args {
				t.Errorf("Args = %q, want %q", cmd.Args, tt.args)
			}
			if cmd.Status != "success" {
				t.Errorf("Status = %q, want %q", cmd.Status, "success")
			}
			if cmd.ID != "20240615T143045.123Z" {
				t.Errorf("ID = %q, want %q", cmd.ID, "20240615T143045.123Z")
			}
		})
	}
}

func TestCommand_Fail(t *testing.T) {
	cmd := NewCommand("rm", "readme", time.Now())
	if cmd.Failed() {
		t.Fatal("new command reported as failed")
	}

	cmd.Fail()
	if !cmd.Failed() || cmd.Status != "error" {
		t.Errorf("after Fail() Status = %q, Failed() = %v", cmd.Status, cmd.Failed())
	}
}

func TestCommand_Elapsed(t *testing.T) {
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cmd := NewCommand("ls", "", started)

	if got := cmd.Elapsed(started.Add(1500 * time.Millisecond)); got != 1500*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 1.5s", got)
	}
}
