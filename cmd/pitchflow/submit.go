package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/osvaldoandrade/pitchflow/internal/countdown"
	"github.com/osvaldoandrade/pitchflow/internal/providers"
	"github.com/osvaldoandrade/pitchflow/internal/services"
	"github.com/osvaldoandrade/pitchflow/pkg/domain"
)

var errControllerClosed = errors.New("submission controller closed")

func submitCmd(webhookURL *string, timeoutSec *int, ui *ui) *cobra.Command {
	var (
		open   bool
		noWait bool
	)
	cmd := &cobra.Command{
		Use:     "submit <idea...>",
		Short:   "Submit an idea and wait for the deck",
		Example: "pitchflow submit \"Ein Café, in dem Katzen die Gäste bedienen\" --open",
		RunE: func(cmd *cobra.Command, args []string) error {
			idea, err := readIdea(args, os.Stdin)
			if err != nil {
				return err
			}
			if err := validateWebhookURL(*webhookURL); err != nil {
				return fmt.Errorf("%w (run `pitchflow init` or pass --webhook-url)", err)
			}
			webhook, err := providers.NewDeckWebhook(*webhookURL, *timeoutSec, nil)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			ctrl := services.NewSubmissionController(webhook, nil, nil, logger)
			defer ctrl.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			events, unsubscribe := ctrl.Subscribe()
			defer unsubscribe()

			spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			spin.Suffix = " Wird gesendet..."
			spin.Start()
			outcome, err := ctrl.Submit(ctx, domain.InputDraft{Text: idea})
			spin.Stop()
			if err != nil {
				return fmt.Errorf("%s (%w)", domain.SubmitFailedMessage, err)
			}
			if outcome != domain.OutcomeAccepted {
				return fmt.Errorf("submission not accepted: %s", outcome)
			}

			snap := ctrl.Snapshot()
			fmt.Printf("%s Session %s\n", ui.info("[INFO]"), snap.SessionID)
			if noWait {
				if snap.ResultURL != "" {
					fmt.Printf("%s Ergebnis (in ca. 3 Minuten): %s\n", ui.info("[INFO]"), snap.ResultURL)
				}
				return nil
			}

			fmt.Println(ui.dim("Bitte warte einen Moment, dein Pitch-Deck wird erstellt"))
			bar := progressbar.NewOptions(domain.CountdownBudget,
				progressbar.OptionSetDescription(countdown.Format(domain.CountdownBudget)),
				progressbar.OptionSetWidth(30),
				progressbar.OptionSetPredictTime(false),
				progressbar.OptionClearOnFinish(),
			)
			final, err := waitForCompletion(ctx, events, func(remaining int) {
				bar.Describe(countdown.Format(remaining))
				_ = bar.Set(domain.CountdownBudget - remaining)
			})
			_ = bar.Finish()
			if err != nil {
				if errors.Is(err, context.Canceled) {
					ctrl.Reset()
					fmt.Println(ui.warn("[WARN]"), "Abgebrochen")
					return nil
				}
				return err
			}

			fmt.Printf("%s Fertig! Dein Pitch-Deck wurde erstellt\n", ui.ok("[OK]"))
			if final.ResultURL == "" {
				fmt.Println(ui.dim("Kein Ergebnis-Link erhalten."))
				return nil
			}
			fmt.Printf("Hier geht's zum Ergebnis: %s\n", ui.title(final.ResultURL))
			if open {
				if err := openBrowser(final.ResultURL); err != nil {
					fmt.Println(ui.warn("[WARN]"), "could not open browser:", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "Open the result in the browser")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Print the session and exit without waiting")
	return cmd
}

// readIdea joins args, or reads stdin when no args are given and stdin is piped.
func readIdea(args []string, stdin *os.File) (string, error) {
	idea := strings.TrimSpace(strings.Join(args, " "))
	if idea == "" && stdin != nil && !isTerminal(int(stdin.Fd())) {
		b, err := io.ReadAll(io.LimitReader(stdin, 64<<10))
		if err != nil {
			return "", fmt.Errorf("read idea from stdin: %w", err)
		}
		idea = strings.TrimSpace(string(b))
	}
	if idea == "" {
		return "", errors.New("idea is required")
	}
	return idea, nil
}

// waitForCompletion consumes controller events until the countdown completes.
// onTick receives the remaining seconds of every running state.
func waitForCompletion(ctx context.Context, events <-chan domain.Event, onTick func(remaining int)) (domain.Snapshot, error) {
	for {
		select {
		case <-ctx.Done():
			return domain.Snapshot{}, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return domain.Snapshot{}, errControllerClosed
			}
			if ev.Type != domain.EventState || ev.State == nil {
				continue
			}
			switch ev.State.Phase {
			case domain.PhaseRunning:
				if onTick != nil && ev.State.RemainingSeconds != nil {
					onTick(*ev.State.RemainingSeconds)
				}
			case domain.PhaseComplete:
				return *ev.State, nil
			case domain.PhaseIdle:
				return domain.Snapshot{}, errors.New("submission was reset")
			}
		}
	}
}

func openBrowser(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}
