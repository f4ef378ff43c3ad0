package auth

import (
	"github.com/coryodaniel/k8s-sub001/internal/core"
	"github.com/coryodaniel/k8s-sub001/internal/kubeconfig"
)

// Build tries each AuthProvider shape against rec in the fixed order spec
// §4.1 lists, returning the first that matches. If none match, it returns
// core.ErrNoApplicableAuthProvider.
func Build(rec kubeconfig.UserRecord) (core.AuthProvider, error) {
	switch {
	case rec.Username != "" || rec.Password != "":
		return NewBasicAuth(rec.Username, rec.Password), nil

	case rec.TokenFile != "":
		return NewBearerTokenFile(rec.TokenFile)

	case rec.Token != "":
		return NewBearerToken(rec.Token), nil

	case hasClientCert(rec):
		return buildClientCert(rec)

	case rec.Exec != nil:
		return buildExec(rec.Exec)

	case rec.AuthProvider != nil:
		return nil, &core.AuthError{Kind: "unsupported-cloud-provider", Cause: unsupportedProviderError(rec.AuthProvider.Name)}

	default:
		return nil, core.ErrNoApplicableAuthProvider
	}
}

func hasClientCert(rec kubeconfig.UserRecord) bool {
	return (rec.ClientCertificate != "" || rec.ClientCertificateData != "") &&
		(rec.ClientKey != "" || rec.ClientKeyData != "")
}

func buildClientCert(rec kubeconfig.UserRecord) (core.AuthProvider, error) {
	if rec.ClientCertificateData != "" && rec.ClientKeyData != "" {
		certPEM := core.DecodeBase64OrRaw(rec.ClientCertificateData)
		keyPEM := core.DecodeBase64OrRaw(rec.ClientKeyData)
		return NewClientCert(certPEM, keyPEM)
	}
	return NewClientCertFile(rec.ClientCertificate, rec.ClientKey)
}

func buildExec(cfg *kubeconfig.ExecConfig) (core.AuthProvider, error) {
	env := make([]string, 0, len(cfg.Env))
	for _, v := range cfg.Env {
		env = append(env, v.Name+"="+v.Value)
	}
	return NewExec(cfg.Command, cfg.Args, env)
}

// unsupportedProviderError reports that a named cloud auth-provider has no
// bundled fetcher; callers wanting CloudRefresh must construct it directly
// with their own CloudTokenFetcher (see cloudrefresh.go's DESIGN.md entry:
// no vendor SDK is bundled).
func unsupportedProviderError(name string) error {
	return &unsupportedProvider{name: name}
}

type unsupportedProvider struct{ name string }

func (e *unsupportedProvider) Error() string {
	return "k8s: auth-provider " + e.name + " has no bundled CloudTokenFetcher; construct auth.CloudRefresh directly"
}
