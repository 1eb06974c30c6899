package config

import (
	"errors"
	"fmt"
)

// Providers is the credential store for every provider the settings surface
// knows about. Only the OpenAI entry is used to send requests.
type Providers struct {
	OpenAI     OpenAI  `yaml:"openai"`
	Google     APIKey  `yaml:"google"`
	Anthropic  APIKey  `yaml:"anthropic"`
	OpenRouter APIKey  `yaml:"openrouter"`
	Azure      Azure   `yaml:"azure"`
	Bedrock    Bedrock `yaml:"bedrock"`
	Groq       APIKey  `yaml:"groq"`
	Cohere     APIKey  `yaml:"cohere"`
}

type OpenAI struct {
	APIKey       string `yaml:"api_key"`
	Organization string `yaml:"organization"`
	BaseURL      string `yaml:"base_url"`
}

type APIKey struct {
	APIKey string `yaml:"api_key"`
}

type Azure struct {
	APIKey                  string `yaml:"api_key"`
	InstanceName            string `yaml:"instance_name"`
	DeploymentName          string `yaml:"deployment_name"`
	APIVersion              string `yaml:"api_version" default:"2023-05-15"`
	EmbeddingDeploymentName string `yaml:"embedding_deployment_name"`
}

type Bedrock struct {
	APIKey    string `yaml:"api_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region" default:"us-east-1"`
}

// validate rejects half-filled entries: a key without the fields needed to use it.
func (p Providers) validate() error {
	var errs []error
	if p.Azure.APIKey != "" && (p.Azure.InstanceName == "" || p.Azure.DeploymentName == "") {
		errs = append(errs, errors.New("azure: instance_name and deployment_name are required with api_key"))
	}
	if (p.Bedrock.APIKey == "") != (p.Bedrock.SecretKey == "") {
		errs = append(errs, errors.New("bedrock: api_key and secret_key must be set together"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid provider settings: %w", errors.Join(errs...))
}
