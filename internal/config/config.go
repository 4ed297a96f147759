// Package config loads and validates environment definitions.
//
// An environment definition names a single deployment instance of the demo
// stack: its unique name, AWS region, and variant flags. Definitions are
// read from either a KEY=VALUE .env file or a YAML file; both use the same
// keys. The resulting Environment is immutable for the duration of a run
// and is threaded explicitly through every component.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/setheliot/eks-demo/internal/util/naming"
)

// nameRegex validates environment names: lowercase alphanumeric plus
// hyphens, starting with a letter. Names end up embedded in AWS resource
// names and tags, so anything else breaks downstream conventions.
var nameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Environment identifies a deployment instance. It is created once at
// orchestration start and never mutated afterwards.
type Environment struct {
	// Name is the unique environment key. It matches the Terraform
	// workspace holding the environment's state.
	Name string `yaml:"env_name"`

	// Region is the AWS region the environment lives in.
	Region string `yaml:"aws_region"`

	// Karpenter marks the extended variant where node capacity is managed
	// by Karpenter instead of a managed node group. It adds teardown
	// stages for nodes and IAM bindings Terraform does not track.
	Karpenter bool `yaml:"karpenter"`

	// StateBucket optionally names the S3 bucket holding remote state.
	// When set, the bucket is checked for reachability before Terraform
	// runs, producing a clearer error than a failed init.
	StateBucket string `yaml:"state_bucket"`

	// AWSAccessKeyID and AWSSecretAccessKey optionally pin static
	// credentials. When empty the default AWS credential chain applies.
	AWSAccessKeyID     string `yaml:"aws_access_key_id"`
	AWSSecretAccessKey string `yaml:"aws_secret_access_key"`
}

// Error reports a missing or malformed configuration value. It always
// aborts the run before any destructive action.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// ClusterName returns the EKS cluster name derived from the environment.
func (e *Environment) ClusterName() string {
	return naming.ClusterName(e.Name)
}

// WorkspaceName returns the Terraform workspace for the environment.
func (e *Environment) WorkspaceName() string {
	return e.Name
}

// Validate checks required fields and naming constraints.
func (e *Environment) Validate() error {
	if e.Name == "" {
		return &Error{Field: "env_name", Reason: "is required"}
	}
	if !nameRegex.MatchString(e.Name) {
		return &Error{Field: "env_name", Reason: "must be lowercase alphanumeric with hyphens, starting with a letter"}
	}
	if e.Region == "" {
		return &Error{Field: "aws_region", Reason: "is required"}
	}
	if (e.AWSAccessKeyID == "") != (e.AWSSecretAccessKey == "") {
		return &Error{Field: "aws_access_key_id", Reason: "access key and secret key must be set together"}
	}
	return nil
}

// Load reads and validates an environment definition. The format is chosen
// by file extension: .yaml/.yml parses as YAML, anything else as a
// KEY=VALUE env file.
func Load(path string) (*Environment, error) {
	env, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}

	return env, nil
}

// LoadWithoutValidation reads an environment definition without checking
// required fields. Useful for tooling that inspects partial definitions.
func LoadWithoutValidation(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Field: "env-file", Reason: err.Error()}
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return parseEnvFile(data)
	}
}

func parseYAML(data []byte) (*Environment, error) {
	var env Environment
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, &Error{Field: "env-file", Reason: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	return &env, nil
}

func parseEnvFile(data []byte) (*Environment, error) {
	values, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, &Error{Field: "env-file", Reason: fmt.Sprintf("failed to parse env file: %v", err)}
	}

	env := &Environment{
		Name:               values["env_name"],
		Region:             values["aws_region"],
		StateBucket:        values["state_bucket"],
		AWSAccessKeyID:     values["aws_access_key_id"],
		AWSSecretAccessKey: values["aws_secret_access_key"],
	}

	if raw, ok := values["karpenter"]; ok && raw != "" {
		karpenter, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &Error{Field: "karpenter", Reason: fmt.Sprintf("must be a boolean, got %q", raw)}
		}
		env.Karpenter = karpenter
	}

	return env, nil
}
