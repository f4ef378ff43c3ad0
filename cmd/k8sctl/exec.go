package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	k8s "github.com/coryodaniel/k8s-sub001"
)

func newExecCmd() *cobra.Command {
	var container string
	cmd := &cobra.Command{
		Use:   "exec <pod> -- <command> [args...]",
		Short: "run a command in a pod over the exec subresource",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connFromFlags()
			if err != nil {
				return err
			}
			defer conn.Close()

			pod, command := args[0], args[1:]
			op := k8s.Connect("v1", "pods/exec").WithResourceName(pod).
				WithQueryParam("stdout", "true").
				WithQueryParam("stderr", "true")
			if ns, _ := cmd.Flags().GetString("namespace"); ns != "" {
				op = op.WithNamespace(ns)
			}
			if container != "" {
				op = op.WithQueryParam("container", container)
			}
			for _, c := range command {
				op = op.WithQueryParam("command", c)
			}

			ctx := cmd.Context()
			stream := k8s.NewConnectStream(ctx, conn, op)
			defer stream.Close()

			for {
				evt, ok := stream.Next(ctx)
				if !ok {
					return stream.Err()
				}
				if len(evt.Stdout) > 0 {
					os.Stdout.Write(evt.Stdout)
				}
				if len(evt.Stderr) > 0 {
					os.Stderr.Write(evt.Stderr)
				}
				if len(evt.ErrorStatus) > 0 {
					fmt.Fprintln(os.Stderr, string(evt.ErrorStatus))
				}
			}
		},
	}
	cmd.Flags().StringVarP(&container, "container", "c", "", "container name")
	return cmd
}
