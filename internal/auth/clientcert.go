package auth

import (
	"context"
	"crypto/tls"
	"sync/atomic"
	"time"

	"github.com/coryodaniel/k8s-sub001/internal/core"
	"github.com/coryodaniel/k8s-sub001/internal/xlog"
)

// clientCertRefreshInterval is the default re-read interval for the
// file-backed variant (spec §4.1: "re-read on a jittered timer (default
// 60s)").
const clientCertRefreshInterval = 60 * time.Second

// ClientCert decorates requests with mutual-TLS client material. The
// static variant holds fixed PEM bytes; the file variant re-reads
// certPath/keyPath periodically to pick up rotated material.
type ClientCert struct {
	cached atomic.Pointer[tls.Certificate]

	certPath, keyPath string
	cancel            context.CancelFunc
	done              chan struct{}
}

// NewClientCert returns a ClientCert provider for an already-decoded
// cert/key pair. Malformed PEM is fatal at construction, per spec §4.1.
func NewClientCert(certPEM, keyPEM []byte) (*ClientCert, error) {
	cert, err := core.BuildClientCertificate(certPEM, keyPEM)
	if err != nil {
		return nil, &core.AuthError{Kind: "malformed", Cause: err}
	}
	c := &ClientCert{}
	c.cached.Store(&cert)
	return c, nil
}

// NewClientCertFile returns a ClientCert provider that re-reads certPath
// and keyPath on a jittered timer. The initial read is synchronous and
// fatal on error.
func NewClientCertFile(certPath, keyPath string) (*ClientCert, error) {
	cert, err := loadCertFiles(certPath, keyPath)
	if err != nil {
		return nil, &core.AuthError{Kind: "malformed", Cause: err}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &ClientCert{certPath: certPath, keyPath: keyPath, cancel: cancel, done: make(chan struct{})}
	c.cached.Store(&cert)

	go c.refreshLoop(ctx)
	return c, nil
}

func loadCertFiles(certPath, keyPath string) (tls.Certificate, error) {
	certPEM, err := core.LoadPEMFile(certPath)
	if err != nil {
		return tls.Certificate{}, err
	}
	keyPEM, err := core.LoadPEMFile(keyPath)
	if err != nil {
		return tls.Certificate{}, err
	}
	return core.BuildClientCertificate(certPEM, keyPEM)
}

func (c *ClientCert) refreshLoop(ctx context.Context) {
	defer close(c.done)
	for {
		if err := core.SleepContext(ctx, core.JitteredDelay(clientCertRefreshInterval)); err != nil {
			return
		}
		cert, err := loadCertFiles(c.certPath, c.keyPath)
		if err != nil {
			xlog.Logger().Warn("client cert refresh failed, keeping cached material", "certPath", c.certPath, "error", err)
			continue
		}
		c.cached.Store(&cert)
	}
}

func (c *ClientCert) Decorate(_ context.Context) (core.Decoration, error) {
	cert := c.cached.Load()
	if cert == nil {
		return core.Decoration{}, &core.AuthError{Kind: "malformed", Cause: errNoCertMaterial}
	}
	return core.Decoration{Certificate: cert}, nil
}

func (c *ClientCert) Close() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
}
