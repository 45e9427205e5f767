package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/smnsjas/go-icontrol/bigip"
	ilog "github.com/smnsjas/go-icontrol/internal/log"
)

// envPassword is consulted when no --password flag is given.
const envPassword = "ICONTROL_PASSWORD"

const (
	auditMaxSize = 10 << 20 // bytes per audit segment
	auditKeep    = 5
)

var (
	flagHost     string
	flagPort     int
	flagUser     string
	flagPassword string
	flagAuth     string
	flagDomain   string
	flagRealm    string
	flagKrb5Conf string
	flagCCache   string
	flagSPN      string
	flagVerify   bool
	flagTimeout  time.Duration
	flagCacheDir string
	flagDebug    bool
	flagLogLevel string
	flagAuditLog string
	flagConfig   string
	flagProfile  string
	flagSession  string
	flagOutput   string
)

// rootCmd is the base command; every subcommand talks to one appliance
// selected by the persistent connection flags.
var rootCmd = &cobra.Command{
	Use:   "icontrolctl",
	Short: "Inspect and call the iControl API of F5 BIG-IP appliances",
	Long: `icontrolctl talks to the SOAP management interface of F5 BIG-IP
appliances. It discovers the namespaces an appliance exposes, shows the
methods each interface declares, and invokes them with arguments typed
against the appliance's own WSDL.

Connection settings come from a profile in the config file (default:
~/.config/icontrolctl/config.yaml), overridden by flags.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "icontrolctl version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagHost, "host", "", "Appliance hostname or address")
	pf.IntVar(&flagPort, "port", 443, "Management port")
	pf.StringVarP(&flagUser, "user", "u", "", `Username (default "admin")`)
	pf.StringVar(&flagPassword, "password", "", "Password (use ICONTROL_PASSWORD env var instead)")
	pf.StringVar(&flagAuth, "auth", "basic", "Authentication mode: basic, ntlm, or kerberos")
	pf.StringVar(&flagDomain, "domain", "", "Domain for NTLM authentication")
	pf.StringVar(&flagRealm, "realm", "", "Kerberos realm (e.g. EXAMPLE.COM)")
	pf.StringVar(&flagKrb5Conf, "krb5-conf", "", "Path to krb5.conf (default $KRB5_CONFIG, then /etc/krb5.conf)")
	pf.StringVar(&flagCCache, "ccache", "", "Kerberos credential cache (default $KRB5CCNAME)")
	pf.StringVar(&flagSPN, "spn", "", "Service principal of the portal (default HTTP/<host>)")
	pf.BoolVar(&flagVerify, "verify", false, "Verify the appliance's TLS certificate")
	pf.DurationVar(&flagTimeout, "timeout", 90*time.Second, "Network timeout")
	pf.StringVar(&flagCacheDir, "cache-dir", "", "Cache fetched WSDL documents in this directory")
	pf.BoolVar(&flagDebug, "debug", false, "Discover all namespaces eagerly when connecting")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (empty = no logging)")
	pf.StringVar(&flagAuditLog, "audit-log", "", "Append a JSON trace of every call to this file")
	pf.StringVar(&flagConfig, "config", "", "Config file (default ~/.config/icontrolctl/config.yaml)")
	pf.StringVar(&flagProfile, "profile", "", "Connection profile from the config file")
	pf.StringVar(&flagSession, "session-id", "", "Bind calls to an existing session identifier")
	pf.StringVarP(&flagOutput, "output", "o", "table", "Output format (table, json)")
}

// newClient builds a client from the config file, environment, and
// flags, in ascending precedence. The returned func flushes and closes
// the logging sinks.
func newClient(cmd *cobra.Command) (*bigip.Client, func(), error) {
	prof, err := activeProfile(flagConfig, flagProfile)
	if err != nil {
		return nil, nil, err
	}

	cfg := bigip.DefaultConfig()
	host := prof.Host
	if prof.Port != 0 {
		cfg.Port = prof.Port
	}
	if prof.Username != "" {
		cfg.Username = prof.Username
	}
	if prof.Auth != "" {
		if cfg.AuthType, err = parseAuthType(prof.Auth); err != nil {
			return nil, nil, err
		}
	}
	if prof.Domain != "" {
		cfg.Domain = prof.Domain
	}
	if prof.Realm != "" {
		cfg.Realm = prof.Realm
	}
	if prof.Krb5Conf != "" {
		cfg.Krb5ConfPath = prof.Krb5Conf
	}
	if prof.CCache != "" {
		cfg.CCachePath = prof.CCache
	}
	if prof.SPN != "" {
		cfg.ServicePrincipal = prof.SPN
	}
	cfg.VerifyTLS = prof.Verify
	if prof.Timeout != "" {
		if cfg.Timeout, err = time.ParseDuration(prof.Timeout); err != nil {
			return nil, nil, fmt.Errorf("invalid timeout in profile: %w", err)
		}
	}
	if prof.CacheDir != "" {
		cfg.CacheDir = prof.CacheDir
	}

	flags := cmd.Flags()
	if flagHost != "" {
		host = flagHost
	}
	if flags.Changed("port") {
		cfg.Port = flagPort
	}
	if flagUser != "" {
		cfg.Username = flagUser
	}
	if flags.Changed("auth") {
		if cfg.AuthType, err = parseAuthType(flagAuth); err != nil {
			return nil, nil, err
		}
	}
	if flagDomain != "" {
		cfg.Domain = flagDomain
	}
	if flagRealm != "" {
		cfg.Realm = flagRealm
	}
	if flagKrb5Conf != "" {
		cfg.Krb5ConfPath = flagKrb5Conf
	}
	if flagCCache != "" {
		cfg.CCachePath = flagCCache
	}
	if flagSPN != "" {
		cfg.ServicePrincipal = flagSPN
	}
	if cfg.AuthType == bigip.AuthKerberos && cfg.CCachePath == "" {
		cfg.CCachePath = os.Getenv("KRB5CCNAME")
	}
	if flags.Changed("verify") {
		cfg.VerifyTLS = flagVerify
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout
	}
	if flagCacheDir != "" {
		cfg.CacheDir = flagCacheDir
	}
	cfg.Debug = flagDebug

	if host == "" {
		return nil, nil, errors.New("an appliance is required: pass --host or select a profile")
	}

	// Appliances ship with admin/admin, so only prompt when the caller
	// named a user without supplying that user's password.
	pass := resolvePassword(flagPassword, prof.Password)
	if pass == "" && (flagUser != "" || prof.Username != "") {
		pass = promptPassword()
	}
	if pass != "" {
		cfg.Password = pass
	}

	logger, closeLogs, err := buildLogger()
	if err != nil {
		return nil, nil, err
	}
	cfg.Logger = logger

	c, err := bigip.New(cmd.Context(), host, cfg)
	if err != nil {
		closeLogs()
		return nil, nil, err
	}
	if flagSession != "" {
		c = c.WithSession(flagSession)
	}
	return c, closeLogs, nil
}

// buildLogger assembles the slog pipeline: console text at the chosen
// level plus an optional JSON audit sink, both behind credential
// redaction. With neither configured the client's trace is discarded so
// command output stays clean for piping.
func buildLogger() (*slog.Logger, func(), error) {
	var sinks []slog.Handler
	if flagLogLevel != "" {
		level, err := parseLevel(flagLogLevel)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	closer := func() {}
	if flagAuditLog != "" {
		audit, err := ilog.NewAuditFile(flagAuditLog, auditMaxSize, auditKeep)
		if err != nil {
			return nil, nil, err
		}
		closer = func() { _ = audit.Close() }
		sinks = append(sinks, slog.NewJSONHandler(audit, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var h slog.Handler
	switch len(sinks) {
	case 0:
		return slog.New(slog.DiscardHandler), closer, nil
	case 1:
		h = sinks[0]
	default:
		h = ilog.FanoutHandler(sinks)
	}
	return slog.New(ilog.NewRedactingHandler(h)), closer, nil
}

// parseLevel maps a --log-level value to a slog level.
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q, valid values: debug, info, warn, error", s)
	}
}

// parseAuthType maps an --auth value to the client's authentication mode.
func parseAuthType(s string) (bigip.AuthType, error) {
	switch strings.ToLower(s) {
	case "basic":
		return bigip.AuthBasic, nil
	case "ntlm":
		return bigip.AuthNTLM, nil
	case "kerberos":
		return bigip.AuthKerberos, nil
	default:
		return 0, fmt.Errorf("invalid auth mode %q, valid values: basic, ntlm, kerberos", s)
	}
}

// resolvePassword returns the password from flag, environment, or
// profile, in that order. Empty means nothing was provided and the
// caller may prompt.
func resolvePassword(flagValue, profileValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(envPassword); env != "" {
		return env
	}
	return profileValue
}

// promptPassword reads a password from stdin, without echo when stdin is
// a terminal.
func promptPassword() string {
	fmt.Fprint(os.Stderr, "Password: ")

	// os.Stdin.Fd() cast to int for cross-platform compatibility
	// (syscall.Stdin is type-specific per OS)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		passBytes, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr) // newline after password
		if err != nil {
			return ""
		}
		return string(passBytes)
	}

	// Not a terminal (piped input): read line
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}
