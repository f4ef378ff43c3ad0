package k8s

import (
	"os"
	"strconv"
	"time"

	"github.com/coryodaniel/k8s-sub001/internal/kubeconfig"
)

// FromEnv builds a Conn for the named cluster entry from the opt-in
// K8S_* environment variables (spec §6): K8S_CLUSTER_CONF_PATH_<name>
// (kubeconfig path, defaults to ~/.kube/config if unset),
// K8S_CLUSTER_CONF_CONTEXT_<name> (context override),
// K8S_CLUSTER_CONF_SA_<name> ("true" selects NewInClusterConn instead of a
// kubeconfig), and K8S_DISCOVERY_TIMEOUT_<name> (milliseconds).
//
// FromEnv is a separate, optional helper: nothing else in this package
// reads the K8S_* variables. The only other environment reads are
// NewInClusterConn's KUBERNETES_SERVICE_HOST/PORT and the home directory
// used for the default kubeconfig path.
func FromEnv(name string, opts ...ConnOption) (*Conn, error) {
	if timeoutMS := os.Getenv("K8S_DISCOVERY_TIMEOUT_" + name); timeoutMS != "" {
		ms, err := strconv.Atoi(timeoutMS)
		if err != nil {
			return nil, &kubeconfigEnvError{name: "K8S_DISCOVERY_TIMEOUT_" + name, cause: err}
		}
		opts = append(opts, WithDiscoveryTimeout(time.Duration(ms)*time.Millisecond))
	}

	if os.Getenv("K8S_CLUSTER_CONF_SA_"+name) == "true" {
		return NewInClusterConn(opts...)
	}

	path := os.Getenv("K8S_CLUSTER_CONF_PATH_" + name)
	if path == "" {
		path = defaultKubeconfigPath()
	}

	sel := kubeconfig.Selection{Context: os.Getenv("K8S_CLUSTER_CONF_CONTEXT_" + name)}
	return NewConnFromKubeconfig(path, sel, opts...)
}

type kubeconfigEnvError struct {
	name  string
	cause error
}

func (e *kubeconfigEnvError) Error() string {
	return "k8s: invalid environment variable " + e.name + ": " + e.cause.Error()
}

func (e *kubeconfigEnvError) Unwrap() error { return e.cause }
