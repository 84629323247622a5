package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultPromptDir is the subdirectory within the user's home directory.
const defaultPromptDir = ".config/servicebot/prompts"

// LoadPromptContent reads a prompt template. An empty configuredPath yields ""
// so callers fall back to their built-in template. Absolute paths are used
// as-is; relative ones are looked up in the working directory first and then
// in ~/.config/servicebot/prompts/.
func LoadPromptContent(configuredPath string) (string, error) {
	if configuredPath == "" {
		return "", nil
	}

	finalPath := configuredPath
	if !filepath.IsAbs(configuredPath) {
		if _, err := os.Stat(configuredPath); err != nil {
			homeDir, herr := os.UserHomeDir()
			if herr != nil {
				return "", fmt.Errorf("failed to get user home directory: %w", herr)
			}
			finalPath = filepath.Join(homeDir, defaultPromptDir, configuredPath)
		}
	}

	promptBytes, err := os.ReadFile(finalPath)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file '%s': %w", finalPath, err)
	}
	return string(promptBytes), nil
}
