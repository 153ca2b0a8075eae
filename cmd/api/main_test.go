package main

import (
	"context"
	"testing"
	"time"

	appconfig "github.com/wolfman30/salescoach-api/internal/config"
)

func TestNewServerTimeouts(t *testing.T) {
	cfg := &appconfig.Config{Port: "9090", LLMTimeout: 60 * time.Second}
	srv := newServer(cfg, nil)

	if srv.Addr != ":9090" {
		t.Fatalf("expected addr :9090, got %q", srv.Addr)
	}
	if srv.WriteTimeout != 135*time.Second {
		t.Fatalf("expected write timeout to cover two provider calls, got %s", srv.WriteTimeout)
	}
}

func TestLoadAWSConfigSkippedWhenUnused(t *testing.T) {
	cfg := &appconfig.Config{SessionStore: "redis", LLMProvider: "openai"}
	awsCfg, err := loadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if awsCfg.Region != "" {
		t.Fatalf("expected empty AWS config, got region %q", awsCfg.Region)
	}
}

func TestLoadAWSConfigForDynamo(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		SessionStore:       "dynamodb",
		AWSRegion:          "us-west-2",
		AWSAccessKeyID:     "test",
		AWSSecretAccessKey: "test",
	}
	awsCfg, err := loadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if awsCfg.Region != "us-west-2" {
		t.Fatalf("expected region us-west-2, got %q", awsCfg.Region)
	}
}
