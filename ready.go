package k8s

import (
	"context"
	"time"

	"github.com/coryodaniel/k8s-sub001/internal/core"
)

// WaitReady blocks until conn's cluster answers a discovery call, polling
// every interval up to timeout. Useful after NewConnFromKubeconfig against
// a cluster that may still be starting up (e.g. one a provisioning
// pipeline just created).
func WaitReady(ctx context.Context, conn *Conn, interval, timeout time.Duration) error {
	return core.WaitReady(ctx, core.WaitReadyConfig{
		Interval: interval,
		Timeout:  timeout,
		Name:     conn.BaseURL,
	}, func(checkCtx context.Context, _ int) (bool, error) {
		if _, err := conn.Driver.Versions(checkCtx); err != nil {
			return false, nil
		}
		return true, nil
	})
}
