package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type ui struct {
	title func(a ...any) string
	ok    func(a ...any) string
	info  func(a ...any) string
	warn  func(a ...any) string
	err   func(a ...any) string
	dim   func(a ...any) string
}

func newUI() *ui {
	return &ui{
		title: color.New(color.FgHiMagenta, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

func main() {
	webhookURL := getenv("PITCHFLOW_WEBHOOK_URL", "")
	profileName := getenv("PITCHFLOW_PROFILE", "")
	timeoutSec := 0
	ui := newUI()

	root := &cobra.Command{
		Use:   "pitchflow",
		Short: "pitchflow CLI",
		Long:  "Turn a one-line business idea into a pitch deck from the terminal.",
	}
	root.SetHelpTemplate(helpTemplate(ui))
	root.SilenceUsage = true

	root.PersistentFlags().StringVar(&webhookURL, "webhook-url", webhookURL, "Deck webhook URL")
	root.PersistentFlags().IntVar(&timeoutSec, "timeout", timeoutSec, "Webhook timeout in seconds")
	root.PersistentFlags().StringVar(&profileName, "profile", profileName, "Config profile")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load cli config: %w", err)
		}
		active := resolveProfileName(profileName, cfg)
		prof := cfg.Profiles[active]

		flags := cmd.Flags()
		if !flags.Changed("webhook-url") {
			webhookURL = firstNonEmpty(strings.TrimSpace(os.Getenv("PITCHFLOW_WEBHOOK_URL")), prof.WebhookURL)
		}
		if !flags.Changed("timeout") && prof.TimeoutSeconds > 0 {
			timeoutSec = prof.TimeoutSeconds
		}
		if !flags.Changed("profile") && profileName == "" && active != "" {
			profileName = active
		}
		return nil
	}

	root.AddCommand(initCmd(&profileName, ui))
	root.AddCommand(submitCmd(&webhookURL, &timeoutSec, ui))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.err("[ERROR]"), err.Error())
		os.Exit(1)
	}
}

func helpTemplate(ui *ui) string {
	title := ui.title("pitchflow")
	return fmt.Sprintf(`%s: from idea to pitch deck in 3 minutes

Usage:
  {{.UseLine}}

Commands:
{{range .Commands}}{{if (or .IsAvailableCommand .IsAdditionalHelpTopicCommand)}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

Flags:
  {{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

Global Flags:
  {{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

Config:
  %s

Examples:
  pitchflow init --webhook-url https://n8n.example.com/webhook/pitch-deck
  pitchflow submit "Ein Café, in dem Katzen die Gäste bedienen"
  echo "Bikesharing für Hunde" | pitchflow submit --open

`, title, configPath())
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
