package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func runWithDB(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("database:\n  path: \""+dbPath+"\"\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate_UpStatusDown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "readings.db")

	status := func() []migrationStatus {
		t.Helper()
		out, err := runWithDB(t, dbPath, "migrate", "status", "-o", "json")
		if err != nil {
			t.Fatalf("migrate status error = %v", err)
		}
		var got []migrationStatus
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("decode %q: %v", out, err)
		}
		return got
	}

	before := status()
	if len(before) != 1 || before[0].AppliedAt != "" || before[0].Name != "dth22" {
		t.Fatalf("status before up = %+v, want one pending dth22 migration", before)
	}

	if _, err := runWithDB(t, dbPath, "migrate", "up"); err != nil {
		t.Fatalf("migrate up error = %v", err)
	}
	after := status()
	if len(after) != 1 || after[0].AppliedAt == "" {
		t.Errorf("status after up = %+v, want applied", after)
	}

	if _, err := runWithDB(t, dbPath, "migrate", "down"); err != nil {
		t.Fatalf("migrate down error = %v", err)
	}
	if got := status(); len(got) != 1 || got[0].AppliedAt != "" {
		t.Errorf("status after down = %+v, want pending again", got)
	}
}
