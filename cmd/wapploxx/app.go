package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"pkt.systems/pslog"
	"pkt.systems/wapploxx"
	"pkt.systems/wapploxx/client"
)

const (
	serverKey         = "server"
	usernameKey       = "username"
	passwordKey       = "password"
	insecureKey       = "insecure"
	timeoutKey        = "timeout"
	persistIPBlockKey = "persist_ip_block"
	ipBlockPathKey    = "ip_block_path"
	configKey         = "config"
	logLevelKey       = "log_level"
)

func submain(ctx context.Context) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "%s\n", err)
		}
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	app := &appConfig{}
	cmd := &cobra.Command{
		Use:           "wapploxx",
		Short:         "Control a wAppLoxx security panel and its smart locks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("server", "", "controller base URL (e.g. https://192.168.1.50)")
	flags.StringP("username", "u", "", "controller account name")
	flags.StringP("password", "p", "", "controller account password")
	flags.BoolP("insecure", "k", false, "skip TLS certificate verification")
	flags.Duration("timeout", wapploxx.DefaultTimeout, "HTTP request timeout")
	flags.Bool("persist-ip-block", true, "persist LOGIN_IP_BLOCKED lockouts across invocations")
	flags.String("ip-block-path", "", "override lockout record location")
	flags.String("config", "", "config file (default $HOME/.wapploxx/config.yaml)")
	flags.String("log-level", "none", "client log level (trace|debug|info|warn|error|none)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose (trace) client logging")

	mustBindFlag(serverKey, "WAPPLOXX_SERVER", flags.Lookup("server"))
	mustBindFlag(usernameKey, "WAPPLOXX_USERNAME", flags.Lookup("username"))
	mustBindFlag(passwordKey, "WAPPLOXX_PASSWORD", flags.Lookup("password"))
	mustBindFlag(insecureKey, "WAPPLOXX_INSECURE", flags.Lookup("insecure"))
	mustBindFlag(timeoutKey, "WAPPLOXX_TIMEOUT", flags.Lookup("timeout"))
	mustBindFlag(persistIPBlockKey, "WAPPLOXX_PERSIST_IP_BLOCK", flags.Lookup("persist-ip-block"))
	mustBindFlag(ipBlockPathKey, "WAPPLOXX_IP_BLOCK_PATH", flags.Lookup("ip-block-path"))
	mustBindFlag(configKey, "WAPPLOXX_CONFIG", flags.Lookup("config"))
	mustBindFlag(logLevelKey, "WAPPLOXX_LOG_LEVEL", flags.Lookup("log-level"))

	cmd.AddCommand(
		newStatusCommand(app),
		newArmCommand(app),
		newDisarmCommand(app),
		newLocksCommand(app),
		newEventsCommand(app),
		newSystemCommand(app),
		newLoginCommand(app),
	)
	return cmd
}

func mustBindFlag(key, env string, flag *pflag.Flag) {
	if flag == nil {
		panic(fmt.Sprintf("flag for key %s not found", key))
	}
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
	if env != "" {
		if err := viper.BindEnv(key, env); err != nil {
			panic(err)
		}
	}
}

// appConfig resolves flag/env/config-file input into a ready client.
type appConfig struct {
	loaded  bool
	cfg     wapploxx.Config
	logger  pslog.Base
	verbose bool
}

func (a *appConfig) load() error {
	if a.loaded {
		return nil
	}
	if err := loadConfigFile(); err != nil {
		return err
	}
	a.cfg = wapploxx.Config{
		Server:         viper.GetString(serverKey),
		Username:       viper.GetString(usernameKey),
		Password:       viper.GetString(passwordKey),
		InsecureTLS:    viper.GetBool(insecureKey),
		Timeout:        viper.GetDuration(timeoutKey),
		PersistIPBlock: viper.GetBool(persistIPBlockKey),
		IPBlockPath:    viper.GetString(ipBlockPathKey),
	}
	if !viper.IsSet(persistIPBlockKey) {
		a.cfg.PersistIPBlock = true
	}
	if err := a.cfg.Normalize(); err != nil {
		return err
	}
	if err := a.setupLogger(); err != nil {
		return err
	}
	a.loaded = true
	return nil
}

func (a *appConfig) setupLogger() error {
	levelStr := strings.ToLower(strings.TrimSpace(viper.GetString(logLevelKey)))
	if a.verbose {
		levelStr = "trace"
	}
	switch levelStr {
	case "", "none", "disabled", "off":
		a.logger = pslog.NoopLogger()
		return nil
	}
	level, ok := pslog.ParseLevel(levelStr)
	if !ok {
		return fmt.Errorf("invalid log level %q", levelStr)
	}
	a.logger = pslog.NewWithOptions(os.Stderr, pslog.Options{
		Mode:     pslog.ModeStructured,
		MinLevel: level,
	}).With("app", "wapploxx")
	return nil
}

func (a *appConfig) newClient() (*client.Client, error) {
	if err := a.load(); err != nil {
		return nil, err
	}
	opts := []client.Option{
		client.WithHTTPTimeout(a.cfg.Timeout),
		client.WithLogger(a.logger),
		client.WithIPBlockPath(a.cfg.IPBlockPath),
	}
	if a.cfg.InsecureTLS {
		opts = append(opts, client.WithInsecureTLS())
	}
	if !a.cfg.PersistIPBlock {
		opts = append(opts, client.WithoutIPBlockPersistence())
	}
	if dir := filepath.Dir(a.cfg.IPBlockPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create lockout record dir: %w", err)
		}
	}
	return client.New(a.cfg.Server, a.cfg.Username, a.cfg.Password, opts...)
}

func loadConfigFile() error {
	cfgPath := strings.TrimSpace(viper.GetString(configKey))
	explicit := cfgPath != ""
	if cfgPath == "" {
		dir, err := wapploxx.DefaultConfigDir()
		if err == nil {
			candidate := filepath.Join(dir, wapploxx.DefaultConfigFileName)
			if _, err := os.Stat(candidate); err == nil {
				cfgPath = candidate
			}
		}
	}
	if cfgPath == "" {
		return nil
	}
	viper.SetConfigFile(cfgPath)
	if err := viper.ReadInConfig(); err != nil {
		if explicit {
			return fmt.Errorf("read config %s: %w", cfgPath, err)
		}
		return nil
	}
	return nil
}
