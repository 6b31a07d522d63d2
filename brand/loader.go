package brand

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} references inside the config file.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// FileConfig is the on-disk shape of a deployment's brand configuration.
type FileConfig struct {
	Brands  map[string]Brand  `yaml:"brands"`
	Layouts map[string]Layout `yaml:"layouts"`
}

// Load reads a YAML brand configuration. A missing file is not an error;
// the builtin table and default layouts apply.
func Load(path string) (*Registry, map[Orientation]Layout, error) {
	layouts := map[Orientation]Layout{
		Portrait:  DefaultLayout(Portrait),
		Landscape: DefaultLayout(Landscape),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRegistry(nil), layouts, nil
		}
		return nil, nil, fmt.Errorf("brand: read config: %w", err)
	}
	expanded := expandEnvVars(string(data))
	var cfg FileConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, nil, fmt.Errorf("brand: parse config: %w", err)
	}
	for name, l := range cfg.Layouts {
		switch Orientation(name) {
		case Portrait, Landscape:
			layouts[Orientation(name)] = l
		default:
			return nil, nil, fmt.Errorf("brand: unknown layout orientation %q", name)
		}
	}
	return NewRegistry(cfg.Brands), layouts, nil
}

// expandEnvVars replaces ${VAR_NAME} with environment variable values;
// unset variables expand to the empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(name)
	})
}
