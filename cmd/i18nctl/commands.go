package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"translate-gateway/catalog/application"
	srcdomain "translate-gateway/source/domain"

	"github.com/spf13/cobra"
)

// run abre a sessão com o timeout global e a fecha no fim.
func run(cmd *cobra.Command, o *options, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	s, err := openSession(ctx, o)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func newResolveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Probe the bundle sources and print the selected one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, o, func(ctx context.Context, s *session) error {
				chosen, err := s.resolver.Resolve(ctx)
				if err != nil {
					if errors.Is(err, srcdomain.ErrSourceUnreachable) {
						return fmt.Errorf("no bundle source reachable, retry later: %w", err)
					}
					return err
				}
				out := cmd.OutOrStdout()
				for _, c := range s.resolver.Candidates() {
					mark := " "
					if c.URL == chosen.URL {
						mark = "*"
					}
					fmt.Fprintf(out, "%s %d %s\t%s\n", mark, c.Priority, c, c.URL)
				}
				return nil
			})
		},
	}
}

func newBootstrapCmd(o *options) *cobra.Command {
	var query, browser string
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Pick and activate the initial language",
		Long: `Picks the initial language in this order: --lang (when a bundle exists),
the saved choice, --browser (when a bundle exists), the base language.
A --lang without a bundle is still attempted through the gateway; if that
fails the previous choice stays active. Nothing is saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, o, func(ctx context.Context, s *session) error {
				lang, err := s.client.Bootstrap(ctx, application.BootstrapInput{Query: query, Browser: browser, Keys: s.Keys()})
				fmt.Fprintln(cmd.OutOrStdout(), lang)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&query, "lang", "", "Language override (like ?lang=)")
	cmd.Flags().StringVar(&browser, "browser", browserLanguage(), "Browser languages, Accept-Language format")
	return cmd
}

func newUseCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "use <lang>",
		Short: "Switch to a language, translating missing keys, and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, func(ctx context.Context, s *session) error {
				keys := s.Keys()
				if err := s.client.ChangeLanguage(ctx, args[0], keys); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "still on %s\n", s.client.Active())
					return err
				}
				lang := s.client.Active()
				have := len(s.client.Cache().Keys(lang))
				if lang == s.client.BaseLanguage() {
					have = len(keys)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d/%d keys)\n", lang, have, len(keys))
				return nil
			})
		},
	}
}

func newGetCmd(o *options) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a key in the active language (or --lang)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, func(ctx context.Context, s *session) error {
				key := args[0]
				if lang == "" {
					if _, err := s.client.Bootstrap(ctx, application.BootstrapInput{Keys: []string{key}}); err != nil {
						s.log.WarnContext(ctx, "bootstrap", "error", err)
					}
				} else if err := s.client.EnsureLanguage(ctx, lang, []string{key}); err != nil {
					s.log.WarnContext(ctx, "language unavailable, showing fallback", "lang", lang, "error", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), s.client.GetText(key, lang))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Language (default: the active one)")
	return cmd
}

func newKeysCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the keys of the base bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, o, func(_ context.Context, s *session) error {
				for _, k := range s.Keys() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	}
}

// browserLanguage converte LANG=pt_BR.UTF-8 em "pt-BR".
func browserLanguage() string {
	v := os.Getenv("LANG")
	if v == "" || v == "C" || v == "POSIX" {
		return ""
	}
	v, _, _ = strings.Cut(v, ".")
	return strings.ReplaceAll(v, "_", "-")
}
