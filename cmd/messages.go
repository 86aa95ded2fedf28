package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/llmstream/internal/llm"
)

// readMessagesFile loads a conversation from a .json, .yml or .yaml file
// holding a list of {role, content} entries.
func readMessagesFile(path string) ([]llm.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading messages %s: %w", path, err)
	}

	var messages []llm.Message
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &messages)
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &messages)
	default:
		return nil, fmt.Errorf("unsupported messages file %s: want .json, .yml or .yaml", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing messages %s: %w", path, err)
	}
	return messages, nil
}

// buildConversation assembles the message list sent to the provider. An
// explicit system prompt goes first; otherwise fallbackSystem is used when
// the conversation has no system message of its own.
func buildConversation(history []llm.Message, system, fallbackSystem, prompt string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	switch {
	case system != "":
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	case fallbackSystem != "" && !containsSystem(history):
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: fallbackSystem})
	}
	messages = append(messages, history...)
	if prompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt})
	}
	return messages
}

func containsSystem(messages []llm.Message) bool {
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			return true
		}
	}
	return false
}

// parseOptions turns key=value pairs into provider options. Values that
// parse as JSON keep their JSON type; everything else is a string.
func parseOptions(pairs []string, base map[string]any) (map[string]any, error) {
	if len(pairs) == 0 && len(base) == 0 {
		return nil, nil
	}
	options := make(map[string]any, len(base)+len(pairs))
	for k, v := range base {
		options[k] = v
	}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q: want key=value", pair)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		options[key] = value
	}
	return options, nil
}
