package config

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CMS_BASE_URL", "http://cms.local")
	t.Setenv("CMS_TOKEN_URL", "http://cms.local/oauth/token")
	t.Setenv("CMS_CLIENT_ID", "client")
	t.Setenv("CMS_CLIENT_SECRET", "secret")
	t.Setenv("METADATA_API_KEY", "rawg-key")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want localhost", cfg.DBHost)
	}
	if !cfg.SyncEnabled {
		t.Error("SyncEnabled = false, want true by default")
	}
	if cfg.AllowedOrigins != nil {
		t.Errorf("AllowedOrigins = %v, want nil", cfg.AllowedOrigins)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	t.Setenv("CMS_BASE_URL", "")
	t.Setenv("CMS_TOKEN_URL", "")
	t.Setenv("CMS_CLIENT_ID", "")
	t.Setenv("CMS_CLIENT_SECRET", "")
	t.Setenv("METADATA_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() error = nil, want missing-variable error")
	}
}

func TestValidateInvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "70000")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() error = nil, want invalid port error")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db.local", DBPort: 5433, DBUser: "u", DBPassword: "p", DBName: "deals", DBSSLMode: "require",
	}
	want := "host=db.local port=5433 user=u password=p dbname=deals sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestParseCommaSeparated(t *testing.T) {
	t.Parallel()

	got := parseCommaSeparated("https://a.example, https://b.example ,")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("parseCommaSeparated() = %v", got)
	}
}
