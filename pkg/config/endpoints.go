package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Endpoints describes one lab's set of DDN product endpoints and credentials.
// Loaded from env by default; CI labs with many targets keep YAML profiles
// instead (profiles/<name>.yaml).
type Endpoints struct {
	EXAScaler    string `yaml:"exascaler" json:"exascaler"`
	AI400X       string `yaml:"ai400x" json:"ai400x"`
	Infinia      string `yaml:"infinia" json:"infinia"`
	IntelliFlash string `yaml:"intelliflash" json:"intelliflash"`
	EMF          string `yaml:"emf" json:"emf"`
	S3           string `yaml:"s3" json:"s3"`

	APIKey      string `yaml:"api_key,omitempty" json:"-"`
	APISecret   string `yaml:"api_secret,omitempty" json:"-"`
	S3AccessKey string `yaml:"s3_access_key,omitempty" json:"-"`
	S3SecretKey string `yaml:"s3_secret_key,omitempty" json:"-"`
}

// LoadEndpoints reads endpoint configuration from environment variables.
func LoadEndpoints() Endpoints {
	return Endpoints{
		EXAScaler:    envOr("DDN_EXASCALER_ENDPOINT", "http://exascaler.ddn.local"),
		AI400X:       envOr("DDN_AI400X_ENDPOINT", "http://ai400x.ddn.local"),
		Infinia:      envOr("DDN_INFINIA_ENDPOINT", "http://infinia.ddn.local"),
		IntelliFlash: envOr("DDN_INTELLIFLASH_ENDPOINT", "http://intelliflash.ddn.local"),
		EMF:          envOr("DDN_EMF_ENDPOINT", "http://emf.ddn.local"),
		S3:           envOr("DDN_S3_ENDPOINT", "http://s3.exascaler.ddn.local"),
		APIKey:       os.Getenv("DDN_API_KEY"),
		APISecret:    os.Getenv("DDN_API_SECRET"),
		S3AccessKey:  os.Getenv("DDN_S3_ACCESS_KEY"),
		S3SecretKey:  os.Getenv("DDN_S3_SECRET_KEY"),
	}
}

// LoadEndpointProfile loads a named YAML endpoint profile from profilesDir.
// Fields left empty in the profile fall back to the env-derived values.
func LoadEndpointProfile(profilesDir, name string) (Endpoints, error) {
	name = strings.ToLower(name)
	path := filepath.Join(profilesDir, fmt.Sprintf("%s.yaml", name))

	data, err := os.ReadFile(path)
	if err != nil {
		return Endpoints{}, fmt.Errorf("load endpoint profile %q: %w", name, err)
	}

	eps := LoadEndpoints()
	if err := yaml.Unmarshal(data, &eps); err != nil {
		return Endpoints{}, fmt.Errorf("parse endpoint profile %q: %w", name, err)
	}

	return eps, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
