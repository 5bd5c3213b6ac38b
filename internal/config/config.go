// Package config loads stagecc.yaml and the environment overrides that
// select the external assembler, linker and reference compiler.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "stagecc.yaml"

// MaxStage is the last implemented grammar stage.
const MaxStage = 4

// Environment variables that override the file.
const (
	EnvAssembler         = "STAGECC_ASSEMBLER"
	EnvLinker            = "STAGECC_LINKER"
	EnvReferenceCompiler = "STAGECC_REFERENCE_CC"
)

// Config represents the stagecc configuration
type Config struct {
	Toolchain Toolchain `yaml:"toolchain"`
	Tests     Tests     `yaml:"tests"`
}

// Toolchain names the programs that turn assembly into an executable.
type Toolchain struct {
	Assembler     string   `yaml:"assembler"`
	AssemblerArgs []string `yaml:"assembler_args"`
	Linker        string   `yaml:"linker"`
	LinkerArgs    []string `yaml:"linker_args"`
	KeepTemp      bool     `yaml:"keep_temp"`
}

// Tests configures the conformance harness.
type Tests struct {
	Dir               string `yaml:"dir"`
	MaxStage          int    `yaml:"max_stage"`
	ReferenceCompiler string `yaml:"reference_compiler"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Toolchain: Toolchain{
			Assembler:     "nasm",
			AssemblerArgs: []string{"-f", "elf64"},
			Linker:        "cc",
			LinkerArgs:    []string{},
		},
		Tests: Tests{
			Dir:               "testdata",
			MaxStage:          MaxStage,
			ReferenceCompiler: "cc",
		},
	}
}

// LoadConfig loads configuration from the specified file. A missing file
// yields the defaults. A .env file in the working directory is loaded
// first, so both the file and the overrides may refer to its variables.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	_, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		config := Default()
		applyEnvOverrides(config)
		expandConfigEnvVars(config)
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	applyEnvOverrides(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.Tests.MaxStage < 0 || config.Tests.MaxStage > MaxStage {
		return fmt.Errorf("%w: tests.max_stage %d: must be between 1 and %d, or 0 for the default", ErrConfigValidation, config.Tests.MaxStage, MaxStage)
	}
	for _, arg := range config.Toolchain.AssemblerArgs {
		if strings.TrimSpace(arg) == "" {
			return fmt.Errorf("%w: toolchain.assembler_args: empty argument", ErrConfigValidation)
		}
	}
	for _, arg := range config.Toolchain.LinkerArgs {
		if strings.TrimSpace(arg) == "" {
			return fmt.Errorf("%w: toolchain.linker_args: empty argument", ErrConfigValidation)
		}
	}
	return nil
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	def := Default()

	if config.Toolchain.Assembler == "" {
		config.Toolchain.Assembler = def.Toolchain.Assembler
		// Default arguments only make sense for the default assembler.
		if config.Toolchain.AssemblerArgs == nil {
			config.Toolchain.AssemblerArgs = def.Toolchain.AssemblerArgs
		}
	}
	if config.Toolchain.Linker == "" {
		config.Toolchain.Linker = def.Toolchain.Linker
	}
	if config.Tests.Dir == "" {
		config.Tests.Dir = def.Tests.Dir
	}
	if config.Tests.MaxStage == 0 {
		config.Tests.MaxStage = def.Tests.MaxStage
	}
	if config.Tests.ReferenceCompiler == "" {
		config.Tests.ReferenceCompiler = def.Tests.ReferenceCompiler
	}
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvAssembler); v != "" {
		config.Toolchain.Assembler = v
	}
	if v := os.Getenv(EnvLinker); v != "" {
		config.Toolchain.Linker = v
	}
	if v := os.Getenv(EnvReferenceCompiler); v != "" {
		config.Tests.ReferenceCompiler = v
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	return nil
}

var (
	bracedVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
	return plainVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

func expandConfigEnvVars(config *Config) {
	tc := &config.Toolchain
	tc.Assembler = expandEnvVars(tc.Assembler)
	tc.Linker = expandEnvVars(tc.Linker)
	for i, arg := range tc.AssemblerArgs {
		tc.AssemblerArgs[i] = expandEnvVars(arg)
	}
	for i, arg := range tc.LinkerArgs {
		tc.LinkerArgs[i] = expandEnvVars(arg)
	}

	config.Tests.Dir = expandEnvVars(config.Tests.Dir)
	config.Tests.ReferenceCompiler = expandEnvVars(config.Tests.ReferenceCompiler)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
