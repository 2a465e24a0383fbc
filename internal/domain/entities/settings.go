package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultManifestName is the manifest looked up in the project directory.
const DefaultManifestName = "Cargo.toml"

// Settings holds the values of an optional configuration file. Every field
// can be overridden by a command-line flag.
type Settings struct {
	Manifest      string         `yaml:"manifest"`
	Workspace     bool           `yaml:"workspace"`
	Message       string         `yaml:"message"`
	TagPrefix     string         `yaml:"tag_prefix"`
	Annotate      bool           `yaml:"annotate"`
	Branch        string         `yaml:"branch"`
	GitTagVersion *bool          `yaml:"git_tag_version"`
	Author        AuthorSettings `yaml:"author"`
}

// AuthorSettings is the identity section of the configuration file.
type AuthorSettings struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads and parses a configuration file, expanding ${ENV_VAR}
// references in string values.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: failed to parse config file %q: %w", ErrInvalidSettings, path, unmarshalErr)
	}

	settings.Manifest = expandEnv(settings.Manifest)
	settings.Message = expandEnv(settings.Message)
	settings.TagPrefix = expandEnv(settings.TagPrefix)
	settings.Branch = expandEnv(settings.Branch)
	settings.Author.Name = expandEnv(settings.Author.Name)
	settings.Author.Email = expandEnv(settings.Author.Email)

	if validateErr := settings.validate(); validateErr != nil {
		return nil, validateErr
	}

	return &settings, nil
}

// DefaultSettings returns the values used when no configuration file exists.
func DefaultSettings() *Settings {
	return &Settings{Manifest: DefaultManifestName}
}

// ManifestName returns the configured manifest file name or the default.
func (s *Settings) ManifestName() string {
	if s.Manifest == "" {
		return DefaultManifestName
	}
	return s.Manifest
}

// ShouldCommit reports whether the bump is committed and tagged.
func (s *Settings) ShouldCommit() bool {
	return s.GitTagVersion == nil || *s.GitTagVersion
}

// AuthorIdentity returns the identity from the configuration file.
func (s *Settings) AuthorIdentity() Identity {
	return Identity{Name: s.Author.Name, Email: s.Author.Email}
}

func (s *Settings) validate() error {
	if s.Message != "" {
		if err := CommitMessageTemplate(s.Message).Validate(); err != nil {
			return fmt.Errorf("config message: %w", err)
		}
	}
	if filepath.IsAbs(s.Manifest) {
		return fmt.Errorf("%w: manifest must be relative to the project directory, got %q", ErrInvalidSettings, s.Manifest)
	}
	return nil
}

// FindConfigFile searches dir and then the user's config directories for a
// configuration file, returning the first one found.
func FindConfigFile(dir string) (string, error) {
	locations := []string{dir}
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		locations = append(locations, filepath.Join(homeDir, ".config"), homeDir)
	}

	patterns := []string{
		".cargobump.yaml",
		".cargobump.yml",
		"cargobump.yaml",
		"cargobump.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// expandEnv replaces ${VAR} references with their environment values.
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}
