package cli

import (
	"testing"
)

func TestBuildAgentCeilingFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AGENT_MAX_ITERATIONS", "3")

	a, _, processes, err := buildAgent(Options{Provider: "openai"}, t.TempDir())
	if err != nil {
		t.Fatalf("buildAgent() error = %v", err)
	}
	defer processes.TerminateAll()

	if got := a.MaxIterations(); got != 3 {
		t.Errorf("MaxIterations() = %d, want 3 from environment", got)
	}
}

func TestBuildAgentCeilingFlagOverridesEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AGENT_MAX_ITERATIONS", "3")

	a, _, processes, err := buildAgent(Options{Provider: "openai", MaxIter: 7}, t.TempDir())
	if err != nil {
		t.Fatalf("buildAgent() error = %v", err)
	}
	defer processes.TerminateAll()

	if got := a.MaxIterations(); got != 7 {
		t.Errorf("MaxIterations() = %d, want flag override of 7", got)
	}
}

func TestBuildAgentRequiresProvider(t *testing.T) {
	if _, _, _, err := buildAgent(Options{}, t.TempDir()); err == nil {
		t.Fatal("buildAgent() without a provider should fail")
	}
}
