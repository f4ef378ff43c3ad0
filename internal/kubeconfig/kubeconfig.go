// Package kubeconfig parses the YAML kubeconfig file format and resolves
// a context/cluster/user triple, per spec §6.
package kubeconfig

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coryodaniel/k8s-sub001/internal/core"
)

// Config is the root kubeconfig document.
type Config struct {
	APIVersion     string         `yaml:"apiVersion"`
	Kind           string         `yaml:"kind"`
	Clusters       []NamedCluster `yaml:"clusters"`
	Contexts       []NamedContext `yaml:"contexts"`
	Users          []NamedUser    `yaml:"users"`
	CurrentContext string         `yaml:"current-context"`
}

// NamedCluster pairs a cluster record with the name other sections
// reference it by.
type NamedCluster struct {
	Name    string  `yaml:"name"`
	Cluster Cluster `yaml:"cluster"`
}

// Cluster is the recognized subset of a kubeconfig cluster record, per
// spec §6.
type Cluster struct {
	Server                   string `yaml:"server"`
	CertificateAuthority     string `yaml:"certificate-authority"`
	CertificateAuthorityData string `yaml:"certificate-authority-data"`
	InsecureSkipTLSVerify    bool   `yaml:"insecure-skip-tls-verify"`
}

// NamedContext pairs a context record with its name.
type NamedContext struct {
	Name    string  `yaml:"name"`
	Context Context `yaml:"context"`
}

// Context selects a cluster/user pair and an optional default namespace.
type Context struct {
	Cluster   string `yaml:"cluster"`
	User      string `yaml:"user"`
	Namespace string `yaml:"namespace"`
}

// NamedUser pairs a user record with its name.
type NamedUser struct {
	Name string     `yaml:"name"`
	User UserRecord `yaml:"user"`
}

// UserRecord is the recognized subset of a kubeconfig user record, per
// spec §6 and the AuthProvider construction rules in spec §4.1.
type UserRecord struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	Token     string `yaml:"token"`
	TokenFile string `yaml:"tokenFile"`

	ClientCertificate     string `yaml:"client-certificate"`
	ClientCertificateData string `yaml:"client-certificate-data"`
	ClientKey             string `yaml:"client-key"`
	ClientKeyData         string `yaml:"client-key-data"`

	Exec         *ExecConfig         `yaml:"exec"`
	AuthProvider *AuthProviderConfig `yaml:"auth-provider"`
}

// ExecConfig is the `{exec: {command, args, env, apiVersion}}` shape spec
// §4.1 describes.
type ExecConfig struct {
	Command    string       `yaml:"command"`
	Args       []string     `yaml:"args"`
	Env        []ExecEnvVar `yaml:"env"`
	APIVersion string       `yaml:"apiVersion"`
}

// ExecEnvVar is one entry of exec.env, parsed with the same
// custom-duration-field idiom rophy-multi-k8s-auth uses for its config
// records (here there's no duration to parse, but the struct-per-entry
// shape is the same grounding).
type ExecEnvVar struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// AuthProviderConfig is the `{auth-provider: {name, config}}` shape spec
// §4.1 describes for CloudRefresh.
type AuthProviderConfig struct {
	Name   string            `yaml:"name"`
	Config map[string]string `yaml:"config"`
}

// Load reads and parses a kubeconfig file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.ConfigError{Op: "file-unreadable", Detail: path, Cause: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &core.ConfigError{Op: "parse-error", Detail: path, Cause: err}
	}
	return &cfg, nil
}

// Selection overrides the current-context-derived cluster/user names, per
// spec §4.2 ("Selection opts override context-derived names").
type Selection struct {
	Context string
	Cluster string
	User    string
}

// Resolved is the fully-dereferenced cluster+user+namespace triple a Conn
// is built from.
type Resolved struct {
	Cluster   Cluster
	User      UserRecord
	Namespace string
}

// Resolve selects a context (sel.Context, falling back to
// CurrentContext), then dereferences its cluster and user records,
// applying sel.Cluster/sel.User as overrides. Errors carry the ConfigError
// taxonomy from spec §4.2.
func (c *Config) Resolve(sel Selection) (Resolved, error) {
	contextName := sel.Context
	if contextName == "" {
		contextName = c.CurrentContext
	}

	clusterName, userName := sel.Cluster, sel.User
	var namespace string

	if contextName != "" {
		ctx, ok := c.findContext(contextName)
		if !ok {
			return Resolved{}, &core.ConfigError{Op: "unknown-context", Detail: contextName}
		}
		if clusterName == "" {
			clusterName = ctx.Cluster
		}
		if userName == "" {
			userName = ctx.User
		}
		namespace = ctx.Namespace
	}

	cluster, ok := c.findCluster(clusterName)
	if !ok {
		return Resolved{}, &core.ConfigError{Op: "unknown-cluster", Detail: clusterName}
	}
	user, ok := c.findUser(userName)
	if !ok {
		return Resolved{}, &core.ConfigError{Op: "unknown-user", Detail: userName}
	}

	return Resolved{Cluster: cluster, User: user, Namespace: namespace}, nil
}

func (c *Config) findContext(name string) (Context, bool) {
	for _, nc := range c.Contexts {
		if nc.Name == name {
			return nc.Context, true
		}
	}
	return Context{}, false
}

func (c *Config) findCluster(name string) (Cluster, bool) {
	for _, nc := range c.Clusters {
		if nc.Name == name {
			return nc.Cluster, true
		}
	}
	return Cluster{}, false
}

func (c *Config) findUser(name string) (UserRecord, bool) {
	for _, nu := range c.Users {
		if nu.Name == name {
			return nu.User, true
		}
	}
	return UserRecord{}, false
}

// Validate reports every structural problem in one pass via errors.Join,
// matching the teacher's ManagerConfig.Validate() convention (spec's
// AMBIENT STACK "Configuration" section).
func (c *Config) Validate() error {
	var errs []error
	if len(c.Clusters) == 0 {
		errs = append(errs, fmt.Errorf("kubeconfig: no clusters defined"))
	}
	if len(c.Users) == 0 {
		errs = append(errs, fmt.Errorf("kubeconfig: no users defined"))
	}
	return errors.Join(errs...)
}
