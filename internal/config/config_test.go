package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `
app:
  name: transferdesk
  environment: test
  port: 8080
database:
  filename: data/transferdesk.db
leagues:
  ucl:
    participants: [alice, bob, carol]
    max_gw: 8
    windows:
      2: 1
      8: 2
  top4:
    participants: [alice, bob]
    allow_undrafted: true
    enforce_positions: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.Name != "transferdesk" || cfg.App.Port != 8080 {
		t.Errorf("app section wrong: %+v", cfg.App)
	}
	ucl, ok := cfg.Leagues["ucl"]
	if !ok {
		t.Fatal("ucl league missing")
	}
	if len(ucl.Participants) != 3 || ucl.MaxGW != 8 {
		t.Errorf("ucl league wrong: %+v", ucl)
	}
	if ucl.Windows[8] != 2 {
		t.Errorf("ucl windows wrong: %v", ucl.Windows)
	}
	top4 := cfg.Leagues["top4"]
	if !top4.AllowUndrafted || !top4.EnforcePositions {
		t.Errorf("top4 flags wrong: %+v", top4)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_FILENAME", "/tmp/override.db")
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Filename != "/tmp/override.db" {
		t.Errorf("env override ignored: %s", cfg.Database.Filename)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"missing app name",
			strings.Replace(sampleConfig, "name: transferdesk", "name: ''", 1),
			"app name",
		},
		{
			"missing database",
			strings.Replace(sampleConfig, "filename: data/transferdesk.db", "filename: ''", 1),
			"database filename",
		},
		{
			"empty participants",
			strings.Replace(sampleConfig, "participants: [alice, bob]", "participants: []", 1),
			"participants",
		},
		{
			"negative rounds",
			strings.Replace(sampleConfig, "8: 2", "8: -1", 1),
			"cannot be negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
