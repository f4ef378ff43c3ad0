package main

import (
	"os"

	"github.com/spf13/viper"

	k8s "github.com/coryodaniel/k8s-sub001"
	"github.com/coryodaniel/k8s-sub001/internal/kubeconfig"
)

// connFromFlags builds a Conn from the root command's persistent
// --kubeconfig/--context flags, falling back to $HOME/.kube/config and the
// kubeconfig's current-context.
func connFromFlags() (*k8s.Conn, error) {
	path := viper.GetString("kubeconfig")
	if path == "" {
		path = os.ExpandEnv("$HOME/.kube/config")
	}
	sel := kubeconfig.Selection{Context: viper.GetString("context")}
	return k8s.NewConnFromKubeconfig(path, sel)
}
