package main

import (
	"fmt"

	"github.com/spf13/cobra"

	k8s "github.com/coryodaniel/k8s-sub001"
)

func newWatchCmd() *cobra.Command {
	var apiVersion string
	var allNamespaces bool
	cmd := &cobra.Command{
		Use:   "watch <kind>",
		Short: "stream ADDED/MODIFIED/DELETED events for a resource collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connFromFlags()
			if err != nil {
				return err
			}
			defer conn.Close()

			var op k8s.Operation
			if allNamespaces {
				op = k8s.WatchAllNamespaces(apiVersion, args[0])
			} else {
				op = k8s.Watch(apiVersion, args[0])
				if ns, _ := cmd.Flags().GetString("namespace"); ns != "" {
					op = op.WithNamespace(ns)
				}
			}

			ctx := cmd.Context()
			stream := k8s.NewWatchStream(ctx, conn, op)
			defer stream.Close()

			for {
				evt, err, ok := stream.Next(ctx)
				if !ok {
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmdStdout, "%s ", evt.Type)
				if err := printJSON(evt.Object); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().StringVar(&apiVersion, "api-version", "v1", "apiVersion of the resource")
	cmd.Flags().BoolVar(&allNamespaces, "all-namespaces", false, "watch across every namespace")
	return cmd
}
