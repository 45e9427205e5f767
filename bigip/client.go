// Package bigip provides a high-level API for the iControl SOAP interface
// of F5 BIG-IP appliances.
package bigip

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/smnsjas/go-icontrol/soap"
	"github.com/smnsjas/go-icontrol/soap/auth"
	"github.com/smnsjas/go-icontrol/soap/transport"
	"github.com/smnsjas/go-icontrol/wsdl"
)

// SessionHeader is the HTTP header that carries the session identifier on
// every call made through a session-bound client.
const SessionHeader = "X-iControl-Session"

// AuthType specifies the authentication mechanism.
type AuthType int

const (
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic AuthType = iota
	// AuthNTLM uses NTLM authentication.
	AuthNTLM
	// AuthKerberos uses Kerberos via SPNEGO tokens.
	AuthKerberos
)

// Config holds configuration for a client.
type Config struct {
	// Port is the management port (default: 443).
	Port int

	// Username for authentication (default: "admin").
	Username string

	// Password for authentication (default: "admin").
	Password string

	// Domain for NTLM authentication.
	Domain string

	// AuthType specifies the authentication type (Basic, NTLM, or
	// Kerberos).
	AuthType AuthType

	// Realm is the Kerberos realm for AuthKerberos.
	Realm string

	// Krb5ConfPath locates krb5.conf for AuthKerberos. Defaults to
	// $KRB5_CONFIG, then /etc/krb5.conf.
	Krb5ConfPath string

	// CCachePath is an optional Kerberos credential cache. When set it is
	// used instead of the password.
	CCachePath string

	// ServicePrincipal overrides the SPN presented to the portal for
	// AuthKerberos. Defaults to HTTP/<host>.
	ServicePrincipal string

	// VerifyTLS enables certificate verification. Off by default:
	// appliances ship self-signed management certificates.
	VerifyTLS bool

	// TLSConfig overrides the transport TLS configuration entirely.
	TLSConfig *tls.Config

	// Timeout applies to every underlying network operation (default: 90s).
	Timeout time.Duration

	// CacheDir, when set, caches fetched WSDL documents on disk so later
	// clients skip the fetch. Entries are keyed by appliance and
	// namespace and never expire.
	CacheDir string

	// Debug eagerly discovers the appliance's namespaces at construction,
	// priming introspection for tooling.
	Debug bool

	// Logger receives the per-call diagnostic trace. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the appliance's factory conventions.
func DefaultConfig() Config {
	return Config{
		Port:     443,
		Username: "admin",
		Password: "admin",
		AuthType: AuthBasic,
		Timeout:  90 * time.Second,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

// withDefaults fills zero-valued fields from DefaultConfig, so a zero
// Config reaches the appliance the same way the vendor tools do.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.Username == "" {
		c.Username = def.Username
	}
	if c.Password == "" {
		c.Password = def.Password
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// Client is the root object for talking to one appliance. It resolves
// namespace paths into schema clients lazily and caches them for its own
// lifetime; entries are never invalidated.
//
// A Client is not safe for concurrent use: resolution populates internal
// caches. Callers wanting concurrency should use one Client per goroutine
// or derive independent session clients with NewSession.
type Client struct {
	host     string
	cfg      Config
	endpoint string
	portal   *transport.HTTPTransport
	logger   *slog.Logger
	session  string

	namespaces map[string]*Namespace
	services   map[string]*Service
	hierarchy  map[string][]string
}

// New creates a client for the appliance at host. The context governs the
// eager discovery performed when cfg.Debug is set; construction does no
// other network traffic.
func New(ctx context.Context, host string, cfg Config) (*Client, error) {
	if host == "" {
		return nil, opError(KindArgument, "", "", "hostname is required", nil)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, opError(KindArgument, "", "", "invalid config", err)
	}

	opts := []transport.HTTPTransportOption{
		transport.WithTimeout(cfg.Timeout),
		transport.WithInsecureSkipVerify(!cfg.VerifyTLS),
	}
	if cfg.TLSConfig != nil {
		opts = append(opts, transport.WithTLSConfig(cfg.TLSConfig))
	}
	tr := transport.NewHTTPTransport(opts...)

	creds := auth.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
		Domain:   cfg.Domain,
	}

	var authenticator auth.Authenticator
	switch cfg.AuthType {
	case AuthNTLM:
		authenticator = auth.NewNTLMAuth(creds)
	case AuthKerberos:
		spn := cfg.ServicePrincipal
		if spn == "" {
			spn = "HTTP/" + host
		}
		krb, err := auth.NewKerberosAuth(auth.KerberosConfig{
			Realm:            cfg.Realm,
			Krb5ConfPath:     cfg.Krb5ConfPath,
			CCachePath:       cfg.CCachePath,
			ServicePrincipal: spn,
			Credentials:      &creds,
		})
		if err != nil {
			return nil, opError(KindArgument, "", "", "failed to initialize kerberos authentication", err)
		}
		authenticator = krb
	default:
		authenticator = auth.NewBasicAuth(creds)
	}

	// Wrap transport with auth
	tr.Client().Transport = authenticator.Transport(tr.Client().Transport)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		host:       host,
		cfg:        cfg,
		endpoint:   "https://" + net.JoinHostPort(host, strconv.Itoa(cfg.Port)) + soap.PortalPath,
		portal:     tr,
		logger:     logger.With("host", host),
		namespaces: make(map[string]*Namespace),
		services:   make(map[string]*Service),
	}

	if cfg.Debug {
		if _, err := c.Namespaces(ctx); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Host returns the appliance address the client was built for.
func (c *Client) Host() string {
	return c.host
}

// Endpoint returns the portal URL every call posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// SessionID returns the attached session identifier, or "" when the client
// is not session-bound.
func (c *Client) SessionID() string {
	return c.session
}

// Namespace returns the top-level namespace node of that exact name,
// creating and caching it on first access. No name rewriting happens here;
// the underscore compatibility rule lives in Resolve.
func (c *Client) Namespace(name string) *Namespace {
	if ns, ok := c.namespaces[name]; ok {
		return ns
	}
	ns := &Namespace{client: c, name: name, children: make(map[string]*Namespace)}
	c.namespaces[name] = ns
	return ns
}

// Resolve returns the schema client for a dotted namespace path such as
// "LocalLB.Pool", fetching and parsing the namespace's WSDL on first use
// and returning the identical cached value afterwards.
//
// A first segment containing underscores is reinterpreted as two segments
// ("LocalLB_Pool" resolves like "LocalLB.Pool") for compatibility with the
// older flattened naming convention, unless a namespace node of that exact
// underscored name already exists.
func (c *Client) Resolve(ctx context.Context, path string) (*Service, error) {
	segs, err := c.splitPath(path)
	if err != nil {
		return nil, err
	}
	full := strings.Join(segs, ".")

	if svc, ok := c.services[full]; ok {
		return svc, nil
	}

	// Materialize the namespace node chain for the path prefix, so the
	// nodes exist for later chained access and introspection.
	ns := c.Namespace(segs[0])
	for _, seg := range segs[1 : len(segs)-1] {
		ns = ns.Namespace(seg)
	}

	svc, err := c.buildService(ctx, full)
	if err != nil {
		return nil, err
	}
	c.services[full] = svc
	return svc, nil
}

// splitPath validates a dotted path and applies the underscore
// compatibility rewrite to the first segment.
func (c *Client) splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, opError(KindArgument, "", "", "namespace path is empty", nil)
	}
	segs := strings.Split(path, ".")

	first := segs[0]
	if _, literal := c.namespaces[first]; !literal && strings.Contains(first, "_") {
		head, rest, _ := strings.Cut(first, "_")
		segs = append([]string{head, rest}, segs[1:]...)
	}

	for _, seg := range segs {
		if seg == "" {
			return nil, opError(KindArgument, path, "", "malformed namespace path", nil)
		}
	}
	if len(segs) < 2 {
		return nil, opError(KindArgument, path, "",
			"namespace path must name a module and an interface, like \"LocalLB.Pool\"", nil)
	}
	return segs, nil
}

// buildService obtains and parses the WSDL for a full namespace path,
// consulting the on-disk cache when one is configured.
func (c *Client) buildService(ctx context.Context, full string) (*Service, error) {
	data, fromCache := c.cachedWSDL(full)
	if !fromCache {
		fetched, err := c.fetchWSDL(ctx, full)
		if err != nil {
			return nil, err
		}
		data = fetched
	}

	doc, err := wsdl.Parse(data)
	if err != nil && fromCache {
		// A stale or truncated cache entry must not wedge resolution.
		os.Remove(c.wsdlCachePath(full))
		fetched, ferr := c.fetchWSDL(ctx, full)
		if ferr != nil {
			return nil, ferr
		}
		data = fetched
		doc, err = wsdl.Parse(data)
	}
	if err != nil {
		return nil, opError(KindParse, full, "",
			fmt.Sprintf("failed to parse WSDL; is %q a valid namespace?", full), err)
	}

	c.logger.Debug("resolved iControl namespace",
		"namespace", full,
		"operations", len(doc.Operations()))

	return &Service{
		client:  c,
		name:    full,
		doc:     doc,
		methods: make(map[string]*Method),
	}, nil
}

// fetchWSDL retrieves a namespace's WSDL from the appliance and stores it
// in the on-disk cache when one is configured.
func (c *Client) fetchWSDL(ctx context.Context, full string) ([]byte, error) {
	data, err := c.portal.Get(ctx, c.wsdlURL(full))
	if err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			return nil, opError(KindConnection, full, "",
				"authentication failed, likely invalid credentials", err)
		}
		return nil, opError(KindConnection, full, "", "", err)
	}
	c.storeWSDL(full, data)
	return data, nil
}

// wsdlURL builds the portal query URL for a namespace's WSDL.
func (c *Client) wsdlURL(namespace string) string {
	return c.endpoint + "?" + soap.WSDLQuery + "=" + namespace
}

// wsdlCachePath returns the cache file for one appliance's namespace.
func (c *Client) wsdlCachePath(namespace string) string {
	host := strings.NewReplacer(":", "_", "/", "_").Replace(c.host)
	return filepath.Join(c.cfg.CacheDir,
		fmt.Sprintf("%s_%d_%s.wsdl", host, c.cfg.Port, namespace))
}

func (c *Client) cachedWSDL(namespace string) ([]byte, bool) {
	if c.cfg.CacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.wsdlCachePath(namespace))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Client) storeWSDL(namespace string, data []byte) {
	if c.cfg.CacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cfg.CacheDir, 0o755); err != nil {
		c.logger.Debug("wsdl cache unavailable", "dir", c.cfg.CacheDir, "error", err)
		return
	}
	if err := os.WriteFile(c.wsdlCachePath(namespace), data, 0o644); err != nil {
		c.logger.Debug("wsdl cache write failed", "error", err)
	}
}

// callHeaders returns the extra HTTP headers each method call carries.
func (c *Client) callHeaders() http.Header {
	if c.session == "" {
		return nil
	}
	h := http.Header{}
	h.Set(SessionHeader, c.session)
	return h
}
