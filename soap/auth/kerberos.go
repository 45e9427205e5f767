package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/go-krb5/krb5/client"
	"github.com/go-krb5/krb5/config"
	"github.com/go-krb5/krb5/credentials"
	"github.com/go-krb5/krb5/keytab"
	"github.com/go-krb5/krb5/spnego"
)

// KerberosConfig holds the settings for Kerberos authentication.
type KerberosConfig struct {
	// Realm is the Kerberos realm (e.g. EXAMPLE.COM).
	Realm string

	// Krb5ConfPath is the path to the krb5.conf file. Defaults to
	// $KRB5_CONFIG, then /etc/krb5.conf.
	Krb5ConfPath string

	// KeytabPath is the path to the keytab file (optional).
	KeytabPath string

	// CCachePath is the path to the credential cache (optional).
	CCachePath string

	// ServicePrincipal is the SPN of the portal, such as
	// HTTP/bigip01.example.com.
	ServicePrincipal string

	// Credentials are used if KeytabPath/CCachePath are empty.
	Credentials *Credentials
}

// KerberosAuth implements Kerberos authentication. Each request carries a
// SPNEGO token for the portal's service principal; ticket acquisition and
// renewal are handled by the underlying krb5 client.
type KerberosAuth struct {
	client *client.Client
	spn    string
}

// NewKerberosAuth creates a Kerberos authentication handler. Credentials
// come from the keytab, the credential cache, or the password, in that
// order.
func NewKerberosAuth(cfg KerberosConfig) (*KerberosAuth, error) {
	if cfg.ServicePrincipal == "" {
		return nil, errors.New("service principal is required")
	}
	if cfg.Krb5ConfPath == "" {
		cfg.Krb5ConfPath = os.Getenv("KRB5_CONFIG")
		if cfg.Krb5ConfPath == "" {
			cfg.Krb5ConfPath = "/etc/krb5.conf"
		}
	}
	conf, err := config.Load(cfg.Krb5ConfPath)
	if err != nil {
		return nil, fmt.Errorf("load krb5.conf from %s: %w", cfg.Krb5ConfPath, err)
	}

	var cl *client.Client
	switch {
	case cfg.KeytabPath != "":
		if cfg.Credentials == nil {
			return nil, errors.New("keytab authentication requires a username")
		}
		kt, err := keytab.Load(cfg.KeytabPath)
		if err != nil {
			return nil, fmt.Errorf("load keytab from %s: %w", cfg.KeytabPath, err)
		}
		cl = client.NewWithKeytab(cfg.Credentials.Username, cfg.Realm, kt, conf, client.DisablePAFXFAST(true))
	case cfg.CCachePath != "":
		cc, err := credentials.LoadCCache(cfg.CCachePath)
		if err != nil {
			return nil, fmt.Errorf("load ccache from %s: %w", cfg.CCachePath, err)
		}
		cl, err = client.NewFromCCache(cc, conf, client.DisablePAFXFAST(true))
		if err != nil {
			return nil, fmt.Errorf("create client from ccache: %w", err)
		}
	case cfg.Credentials != nil:
		cl = client.NewWithPassword(
			cfg.Credentials.Username,
			cfg.Realm,
			cfg.Credentials.Password,
			conf,
			client.DisablePAFXFAST(true),
		)
	default:
		return nil, errors.New("no credentials provided (keytab, ccache, or password required)")
	}

	return &KerberosAuth{client: cl, spn: cfg.ServicePrincipal}, nil
}

// Name returns the authentication scheme name.
func (a *KerberosAuth) Name() string {
	return "Kerberos"
}

// Transport wraps an http.RoundTripper with SPNEGO authentication.
func (a *KerberosAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return &spnegoTransport{base: base, client: a.client, spn: a.spn}
}

// spnegoTransport attaches a SPNEGO token to each request. The AS
// exchange happens on first use; service tickets come from the client's
// cache after that.
type spnegoTransport struct {
	base   http.RoundTripper
	client *client.Client
	spn    string

	mu       sync.Mutex
	loggedIn bool
}

func (t *spnegoTransport) login() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loggedIn {
		return nil
	}
	if err := t.client.Login(); err != nil {
		return fmt.Errorf("kerberos login: %w", err)
	}
	t.loggedIn = true
	return nil
}

// RoundTrip implements http.RoundTripper.
func (t *spnegoTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.login(); err != nil {
		return nil, err
	}

	tkn, err := spnego.SPNEGOClient(t.client, t.spn).InitSecContext()
	if err != nil {
		return nil, fmt.Errorf("spnego init: %w", err)
	}
	token, err := tkn.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal spnego token: %w", err)
	}

	// Clone the request to avoid mutating the original
	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set("Authorization", "Negotiate "+base64.StdEncoding.EncodeToString(token))
	return t.base.RoundTrip(reqCopy)
}
