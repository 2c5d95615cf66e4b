package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nexa.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"NEXA_CONFIG", "NEXA_VAPI_URL", "NEXA_VAPI_PUBLIC_KEY", "NEXA_VAPI_WORKFLOW_ID",
		"NEXA_VAPI_ASSISTANT_ID", "NEXA_GEMINI_MODEL", "PORT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
interviewer:
  gateway_url: wss://gateway.example.com/call
  workflow_id: wf-123
  assistant_id: asst-456
feedback:
  categories:
    - Go Fluency
    - System Design
server:
  port: 9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Interviewer.WorkflowID != "wf-123" || cfg.Interviewer.AssistantID != "asst-456" {
		t.Errorf("Interviewer = %+v", cfg.Interviewer)
	}
	if len(cfg.Feedback.Categories) != 2 || cfg.Feedback.Categories[0] != "Go Fluency" {
		t.Errorf("Categories = %v", cfg.Feedback.Categories)
	}
	if cfg.Server.Port != 9090 || cfg.Server.LatestLimit != defaultLatestLimit {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Gemini.Model != defaultModel {
		t.Errorf("Model = %q, want default", cfg.Gemini.Model)
	}
}

func TestLoad_EmptyCategoriesUseDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "feedback:\n  categories: []\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Feedback.Categories) != len(domain.DefaultFeedbackCategories) {
		t.Errorf("Categories = %v, want defaults", cfg.Feedback.Categories)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "interviewer: [unterminated"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"blank category", "feedback:\n  categories: [\"Clarity\", \" \"]\n"},
		{"duplicate category", "feedback:\n  categories: [\"Clarity\", \"clarity\"]\n"},
		{"http gateway", "interviewer:\n  gateway_url: http://example.com\n"},
		{"negative latest", "server:\n  latest_limit: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "interviewer:\n  workflow_id: wf-file\n  assistant_id: asst-file\n")
	t.Setenv("NEXA_CONFIG", path)
	t.Setenv("NEXA_VAPI_WORKFLOW_ID", "wf-env")
	t.Setenv("PORT", "3000")

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Interviewer.WorkflowID != "wf-env" {
		t.Errorf("WorkflowID = %q, want wf-env", cfg.Interviewer.WorkflowID)
	}
	if cfg.Interviewer.AssistantID != "asst-file" {
		t.Errorf("AssistantID = %q, want asst-file", cfg.Interviewer.AssistantID)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Server.Port)
	}
}

func TestResolve_NoFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Server.Port != defaultPort || len(cfg.Feedback.Categories) != len(domain.DefaultFeedbackCategories) {
		t.Errorf("Resolve() = %+v", cfg)
	}
}
