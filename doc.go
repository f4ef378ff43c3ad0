// Package k8s is a Kubernetes API client library: it parses a kubeconfig
// (or in-pod service-account material), discovers a cluster's REST
// resources at call time, and exposes single-shot, paginated-list,
// resumable-watch, and exec/attach operations against them without a
// compiled OpenAPI schema.
//
// A minimal program:
//
//	conn, err := k8s.NewConnFromKubeconfig(os.ExpandEnv("$HOME/.kube/config"), kubeconfig.Selection{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
//
//	op := k8s.Get("v1", "pods").WithNamespace("default").WithResourceName("nginx")
//	result, err := k8s.Do(context.Background(), conn, op)
//
// The heavy lifting — connection assembly, runtime discovery, the
// verb/path engine, and the streaming runners — lives under internal/;
// this package is a thin, stable facade over it.
package k8s
