// Command k8sctl is a thin demo CLI over package k8s: enough to get, list,
// watch, and exec against a cluster using nothing but this library's
// facade and a kubeconfig, exercising the same paths the package's tests
// do against a real cluster.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cmdStdout = os.Stdout

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "k8sctl",
		Short:         "demo CLI over the k8s client library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("kubeconfig", "", "path to kubeconfig (default $HOME/.kube/config)")
	root.PersistentFlags().String("context", "", "kubeconfig context to use")
	root.PersistentFlags().String("namespace", "", "namespace to scope the request to")
	_ = viper.BindPFlags(root.PersistentFlags())
	viper.SetEnvPrefix("K8SCTL")
	viper.AutomaticEnv()

	root.AddCommand(newGetCmd(), newListCmd(), newWatchCmd(), newExecCmd())
	return root
}
