// i18nctl é o cliente de linha de comando do cache de traduções: escolhe a
// fonte de bundles, aplica a política de idioma e completa o que falta via gateway.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	gateway   string
	sources   []string
	prefFile  string
	redisURL  string
	session   string
	clientKey string
	workers   int
	rps       float64
	timeout   time.Duration
	verbose   bool
}

func defaultPrefFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".i18nctl-lang.json"
	}
	return filepath.Join(dir, "i18nctl", "lang.json")
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "i18nctl",
		Short: "Client for the translate gateway: language selection and translation cache",
		Long: `i18nctl drives the client side of the translate gateway.

Bundles are fetched from the first reachable source (--sources, probed in
order); keys missing from a language are translated one by one through
POST /api/translate and kept in the local cache.

Commands:
  resolve     Probe the sources and print the one selected
  bootstrap   Pick the initial language (query > saved > browser > base)
  use         Switch language, translating missing keys, and save it
  get         Print one key in the active (or given) language
  keys        List the keys of the base bundle`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&o.gateway, "gateway", envOr("I18NCTL_GATEWAY", "http://localhost:3000"), "Gateway base URL")
	f.StringSliceVar(&o.sources, "sources", nil, "Bundle source roots in priority order (default <gateway>/locales)")
	f.StringVar(&o.prefFile, "pref-file", defaultPrefFile(), "File holding the saved language")
	f.StringVar(&o.redisURL, "redis-url", os.Getenv("REDIS_URL"), "Save the language in Redis instead of --pref-file")
	f.StringVar(&o.session, "session", "default", "Session id for the Redis preference key")
	f.StringVar(&o.clientKey, "client-key", "", "Value sent in X-Client-Key (gateway RATE_KEY_HEADER)")
	f.IntVar(&o.workers, "workers", 1, "Parallel gateway calls when filling a language")
	f.Float64Var(&o.rps, "rps", 10.0/60.0, "Max gateway calls per second (0 = unpaced)")
	f.DurationVar(&o.timeout, "timeout", 2*time.Minute, "Overall timeout")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(
		newResolveCmd(o),
		newBootstrapCmd(o),
		newUseCmd(o),
		newGetCmd(o),
		newKeysCmd(o),
	)
	return root
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "i18nctl: %v\n", err)
		os.Exit(1)
	}
}
