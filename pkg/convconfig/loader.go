package convconfig

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nebuladata/colbuild/pkg/ingesterr"
)

// Load reads a YAML file into cfg, substituting ${VAR_NAME} references
// against the process environment before parsing. Fields left absent
// in the file keep whatever cfg already held, so callers should seed
// it with NewRunConfig first.
func Load(filePath string, cfg *RunConfig) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeConfig, "failed to read config file")
	}

	content := substituteEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeConfig, "failed to parse config YAML")
	}

	return nil
}

// Save writes cfg to a YAML file, used by the CLI's --dump-config flag
// to capture the effective configuration of a run.
func Save(filePath string, cfg *RunConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeConfig, "failed to marshal config")
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return ingesterr.Wrap(err, ingesterr.TypeConfig, "failed to write config file")
	}
	return nil
}

func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		content = content[:start] + os.Getenv(varName) + content[end+1:]
	}
	return content
}
