package k8s

import (
	"crypto/x509"
	"net"
	"os"
	"path/filepath"

	"github.com/coryodaniel/k8s-sub001/internal/auth"
	"github.com/coryodaniel/k8s-sub001/internal/core"
	"github.com/coryodaniel/k8s-sub001/internal/discovery"
	"github.com/coryodaniel/k8s-sub001/internal/kubeconfig"
)

// Conn is the facade's immutable per-cluster handle, a thin alias over
// internal/core's type so callers never import internal/.
type Conn = core.Conn

// Well-known paths and env vars a Pod's service-account projection sets,
// per spec §6.
const (
	inClusterHostEnv    = "KUBERNETES_SERVICE_HOST"
	inClusterPortEnv    = "KUBERNETES_SERVICE_PORT"
	inClusterCACertPath = "/var/run/secrets/kubernetes.io/serviceaccount/ca.crt"
	inClusterTokenPath  = "/var/run/secrets/kubernetes.io/serviceaccount/token"
)

// NewConnFromKubeconfig loads, resolves, and validates the kubeconfig at
// path, builds the matching AuthProvider (spec §4.1) and an HTTP discovery
// driver, and returns an assembled Conn. sel overrides the current
// context's cluster/user, per spec §4.2.
func NewConnFromKubeconfig(path string, sel kubeconfig.Selection, opts ...ConnOption) (*Conn, error) {
	cfg, err := kubeconfig.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, &core.ConfigError{Op: "invalid", Detail: path, Cause: err}
	}

	resolved, err := cfg.Resolve(sel)
	if err != nil {
		return nil, err
	}

	cc := newConnConfig().apply(opts)

	caCertPool, err := caCertPoolFor(resolved.Cluster)
	if err != nil {
		return nil, err
	}
	insecure := cc.insecureSkipTLS || resolved.Cluster.InsecureSkipTLSVerify

	authProvider, err := auth.Build(resolved.User)
	if err != nil {
		return nil, err
	}

	return newConn(resolved.Cluster.Server, caCertPool, insecure, authProvider, cc), nil
}

// NewInClusterConn builds a Conn from the in-pod service-account
// projection (spec §6): KUBERNETES_SERVICE_HOST/PORT for the API server
// address, the projected CA bundle, and a ServiceAccount AuthProvider
// re-reading the projected token.
func NewInClusterConn(opts ...ConnOption) (*Conn, error) {
	host := os.Getenv(inClusterHostEnv)
	port := os.Getenv(inClusterPortEnv)
	if host == "" || port == "" {
		return nil, &core.ConfigError{Op: "not-in-cluster", Detail: "KUBERNETES_SERVICE_HOST/PORT not set"}
	}

	caPEM, err := os.ReadFile(inClusterCACertPath)
	if err != nil {
		return nil, &core.ConfigError{Op: "file-unreadable", Detail: inClusterCACertPath, Cause: err}
	}
	caCertPool, err := core.DecodeCertPool(caPEM)
	if err != nil {
		return nil, &core.ConfigError{Op: "invalid-ca", Detail: inClusterCACertPath, Cause: err}
	}

	authProvider, err := auth.NewServiceAccount(inClusterTokenPath)
	if err != nil {
		return nil, err
	}

	cc := newConnConfig().apply(opts)
	baseURL := "https://" + net.JoinHostPort(host, port)
	return newConn(baseURL, caCertPool, cc.insecureSkipTLS, authProvider, cc), nil
}

func caCertPoolFor(cluster kubeconfig.Cluster) (*x509.CertPool, error) {
	switch {
	case cluster.CertificateAuthorityData != "":
		return core.DecodeCertPool(core.DecodeBase64OrRaw(cluster.CertificateAuthorityData))
	case cluster.CertificateAuthority != "":
		pem, err := core.LoadPEMFile(cluster.CertificateAuthority)
		if err != nil {
			return nil, &core.ConfigError{Op: "file-unreadable", Detail: cluster.CertificateAuthority, Cause: err}
		}
		return core.DecodeCertPool(pem)
	default:
		return nil, nil
	}
}

func newConn(baseURL string, caCertPool *x509.CertPool, insecure bool, authProvider core.AuthProvider, cc connConfig) *Conn {
	client := core.NewHTTPClient(caCertPool, insecure, authProvider)
	driver := discovery.NewHTTPDriver(baseURL, client, authProvider, cc.discoveryTimeout)
	return core.NewConn(baseURL, caCertPool, insecure, authProvider, driver, client, cc.discoveryTTL, cc.discoveryTimeout, cc.fieldManager, cc.listLimit)
}

// NewConnFromFile builds a Conn whose discovery is served from a static
// JSON fixture (internal/discovery.FileDriver) instead of a live cluster,
// for tests that need deterministic resource listings without an HTTP
// server. authProvider and baseURL still address the real (or test)
// cluster for non-discovery calls.
func NewConnFromFile(baseURL, fixturePath string, authProvider core.AuthProvider, caCertPool *x509.CertPool, insecure bool, opts ...ConnOption) (*Conn, error) {
	driver, err := discovery.NewFileDriver(fixturePath)
	if err != nil {
		return nil, err
	}
	cc := newConnConfig().apply(opts)
	client := core.NewHTTPClient(caCertPool, insecure, authProvider)
	return core.NewConn(baseURL, caCertPool, insecure, authProvider, driver, client, cc.discoveryTTL, cc.discoveryTimeout, cc.fieldManager, cc.listLimit), nil
}

// defaultKubeconfigPath mirrors kubectl's $HOME/.kube/config default, used
// by FromEnv when no explicit path is configured.
func defaultKubeconfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kube", "config")
}
