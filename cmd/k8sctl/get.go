package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	k8s "github.com/coryodaniel/k8s-sub001"
)

func newGetCmd() *cobra.Command {
	var apiVersion string
	cmd := &cobra.Command{
		Use:   "get <kind> <name>",
		Short: "fetch a single resource and print it as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connFromFlags()
			if err != nil {
				return err
			}
			defer conn.Close()

			op := k8s.Get(apiVersion, args[0]).WithResourceName(args[1])
			if ns, _ := cmd.Flags().GetString("namespace"); ns != "" {
				op = op.WithNamespace(ns)
			}

			result, err := k8s.Do(context.Background(), conn, op)
			if err != nil {
				return err
			}
			return printJSON(result.Value)
		},
	}
	cmd.Flags().StringVar(&apiVersion, "api-version", "v1", "apiVersion of the resource")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(cmdStdout)
	enc.SetIndent("", "  ")
	if v == nil {
		fmt.Fprintln(cmdStdout, "null")
		return nil
	}
	return enc.Encode(v)
}
