package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/llmstream/internal/llm"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"top_k=5", "stop=[\"END\"]", "user=alice", "flag=true"}, map[string]any{"top_k": 1, "seed": 9})
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if opts["top_k"] != float64(5) {
		t.Errorf("top_k = %#v, want 5 (overrides base)", opts["top_k"])
	}
	if opts["seed"] != 9 {
		t.Errorf("seed = %#v, want 9 from base", opts["seed"])
	}
	if opts["user"] != "alice" {
		t.Errorf("user = %#v, want plain string", opts["user"])
	}
	if opts["flag"] != true {
		t.Errorf("flag = %#v, want true", opts["flag"])
	}
	stop, ok := opts["stop"].([]any)
	if !ok || len(stop) != 1 || stop[0] != "END" {
		t.Errorf("stop = %#v, want [END]", opts["stop"])
	}

	if got, err := parseOptions(nil, nil); err != nil || got != nil {
		t.Errorf("parseOptions(nil, nil) = %v, %v; want nil, nil", got, err)
	}

	for _, bad := range []string{"novalue", "=x"} {
		if _, err := parseOptions([]string{bad}, nil); err == nil {
			t.Errorf("parseOptions(%q) should fail", bad)
		}
	}
}

func TestBuildConversation(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "a"},
		{Role: llm.RoleAssistant, Content: "b"},
	}

	tests := []struct {
		name     string
		history  []llm.Message
		system   string
		fallback string
		prompt   string
		want     []llm.Role
		first    string
	}{
		{"explicit system", history, "sys", "fallback", "c", []llm.Role{llm.RoleSystem, llm.RoleUser, llm.RoleAssistant, llm.RoleUser}, "sys"},
		{"fallback system", history, "", "fallback", "", []llm.Role{llm.RoleSystem, llm.RoleUser, llm.RoleAssistant}, "fallback"},
		{"history has system", append([]llm.Message{{Role: llm.RoleSystem, Content: "own"}}, history...), "", "fallback", "", []llm.Role{llm.RoleSystem, llm.RoleUser, llm.RoleAssistant}, "own"},
		{"no system anywhere", nil, "", "", "hi", []llm.Role{llm.RoleUser}, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildConversation(tt.history, tt.system, tt.fallback, tt.prompt)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d messages, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, role := range tt.want {
				if got[i].Role != role {
					t.Errorf("message %d role = %s, want %s", i, got[i].Role, role)
				}
			}
			if got[0].Content != tt.first {
				t.Errorf("first content = %q, want %q", got[0].Content, tt.first)
			}
		})
	}
}

func TestReadMessagesFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "conv.json")
	os.WriteFile(jsonPath, []byte(`[{"role":"system","content":"S"},{"role":"user","content":"U"}]`), 0o644)
	yamlPath := filepath.Join(dir, "conv.yaml")
	os.WriteFile(yamlPath, []byte("- role: system\n  content: S\n- role: user\n  content: U\n"), 0o644)

	for _, path := range []string{jsonPath, yamlPath} {
		msgs, err := readMessagesFile(path)
		if err != nil {
			t.Fatalf("readMessagesFile(%s): %v", path, err)
		}
		if len(msgs) != 2 || msgs[0].Role != llm.RoleSystem || msgs[1].Content != "U" {
			t.Errorf("readMessagesFile(%s) = %+v", path, msgs)
		}
	}

	txtPath := filepath.Join(dir, "conv.txt")
	os.WriteFile(txtPath, []byte("hello"), 0o644)
	if _, err := readMessagesFile(txtPath); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := readMessagesFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStreamCommand(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, text := range []string{"Hel", "lo"} {
			fmt.Fprintf(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":%q}}\n\n", text)
		}
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	}))
	defer ts.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".llmstream.yml")
	cfgYAML := "provider: anthropic\nmodel: test-model\nsystem_prompt: Be concise\nbase_url: " + ts.URL + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", cfgPath, "stream", "--option", "top_k=3", "Hi"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("stream command: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "Hello" {
		t.Errorf("output = %q, want %q", got, "Hello")
	}
	system, _ := gotBody["system"].([]any)
	if len(system) != 1 || system[0].(map[string]any)["text"] != "Be concise" {
		t.Errorf("system = %v, want config system_prompt", gotBody["system"])
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v, want test-model", gotBody["model"])
	}
	if gotBody["top_k"] != float64(3) {
		t.Errorf("top_k = %v, want 3", gotBody["top_k"])
	}
}
