package main

import (
	"context"

	"github.com/spf13/cobra"

	k8s "github.com/coryodaniel/k8s-sub001"
)

func newListCmd() *cobra.Command {
	var apiVersion string
	var allNamespaces bool
	var labelSelector string
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "page through a resource collection, printing each page as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connFromFlags()
			if err != nil {
				return err
			}
			defer conn.Close()

			var op k8s.Operation
			if allNamespaces {
				op = k8s.ListAllNamespaces(apiVersion, args[0])
			} else {
				op = k8s.List(apiVersion, args[0])
				if ns, _ := cmd.Flags().GetString("namespace"); ns != "" {
					op = op.WithNamespace(ns)
				}
			}
			if labelSelector != "" {
				sel, err := k8s.ParseSelector(labelSelector)
				if err != nil {
					return err
				}
				op = k8s.WithLabelSelector(op, sel)
			}

			ctx := context.Background()
			stream := k8s.NewListStream(conn, op, 0)
			for {
				page, ok := stream.Next(ctx)
				if !ok {
					return nil
				}
				if page.Err != nil {
					return page.Err
				}
				if err := printJSON(page.Value); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().StringVar(&apiVersion, "api-version", "v1", "apiVersion of the resource")
	cmd.Flags().BoolVar(&allNamespaces, "all-namespaces", false, "list across every namespace")
	cmd.Flags().StringVarP(&labelSelector, "selector", "l", "", "label selector")
	return cmd
}
