package config

import (
	"testing"
	"time"
)

func baseConfig() *Config {
	return &Config{
		Port:        "8000",
		Env:         "production",
		DatabaseURL: "postgres://localhost/sms",
		JWTSecret:   "secret",
		JWTTTL:      24 * time.Hour,
		NotifyMode:  "direct",
	}
}

func TestValidate_OK(t *testing.T) {
	if err := baseConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_JWTSecretRequiredOutsideDev(t *testing.T) {
	cfg := baseConfig()
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing JWT secret must fail in production")
	}

	cfg.Env = "development"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("dev without secret should pass: %v", err)
	}
}

func TestValidate_NotifyMode(t *testing.T) {
	cfg := baseConfig()
	cfg.NotifyMode = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown notify mode must fail")
	}

	cfg.NotifyMode = "queue"
	if err := cfg.Validate(); err == nil {
		t.Fatal("queue mode without brokers must fail")
	}

	cfg.KafkaBrokers = []string{"localhost:9092"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("queue mode with brokers should pass: %v", err)
	}
}

func TestValidate_TTL(t *testing.T) {
	cfg := baseConfig()
	cfg.JWTTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("non-positive token TTL must fail")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("a@b.com, c@d.com ,, e@f.com")
	want := []string{"a@b.com", "c@d.com", "e@f.com"}
	if len(got) != len(want) {
		t.Fatalf("splitList = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIsDev(t *testing.T) {
	cfg := baseConfig()
	if cfg.IsDev() {
		t.Error("production is not dev")
	}
	cfg.Env = "development"
	if !cfg.IsDev() {
		t.Error("development should be dev")
	}
}
