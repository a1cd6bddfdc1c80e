package cmd

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/Daskott/swiftly/client"
	"github.com/Daskott/swiftly/countdown"
	"github.com/Daskott/swiftly/location"
	"github.com/Daskott/swiftly/profile"
	"github.com/Daskott/swiftly/sos"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	coordsArg        string
	serverURLArg     string
	emergencyTypeArg string
	countdownArg     int

	// one countdown tick
	countdownInterval = countdown.DEFAULT_INTERVAL
)

type alertResult struct {
	outcome *sos.Outcome
	err     error
}

func createSOSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sos",
		Short: "Sends an SOS with your location to your emergency contacts",
		Long: `Starts a countdown & sends an SOS with your location to your emergency contacts
once it runs out. Press Enter before then to cancel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSOS(cmd, clientConfig())
		},
	}

	cmd.SilenceUsage = true

	cmd.Flags().StringVar(&coordsArg, "coords", "", "your position as \"lat,lon\" (default is location.coordinates in config)")
	cmd.Flags().StringVarP(&serverURLArg, "server", "s", "", "swiftly server url (default is server.url in config)")
	cmd.Flags().StringVarP(&emergencyTypeArg, "emergency-type", "e", "", "what kind of help you need (default is sos.emergencyType in config)")
	cmd.Flags().IntVarP(&countdownArg, "countdown", "n", 0, "seconds to wait before sending (default is sos.countdown in config)")

	return cmd
}

func runSOS(cmd *cobra.Command, config *viper.Viper) error {
	coords := flagOrConfig(coordsArg, config.GetString("location.coordinates"))
	provider, err := location.NewStaticFromString(coords)
	if err != nil {
		return formattedError("%v", err)
	}

	ticks := countdownArg
	if ticks <= 0 {
		ticks = config.GetInt("sos.countdown")
	}
	if ticks <= 0 {
		ticks = countdown.DEFAULT_TICKS
	}

	trigger := sos.NewTrigger(
		profile.NewStore(profilePath(config)),
		provider,
		client.New(flagOrConfig(serverURLArg, config.GetString("server.url"))),
		sos.WithEmergencyType(flagOrConfig(emergencyTypeArg, config.GetString("sos.emergencyType"))),
	)

	results := make(chan alertResult, 1)
	session := sos.NewSession(context.Background(), trigger,
		sos.WithCountdown(countdown.WithTicks(ticks), countdown.WithInterval(countdownInterval)),
		sos.OnCountdownTick(func(remaining int) {
			if remaining > 0 {
				cmd.Printf("%v...\n", remaining)
			}
		}),
		sos.OnOutcome(func(outcome *sos.Outcome, err error) {
			results <- alertResult{outcome: outcome, err: err}
		}),
	)
	defer session.Close()

	cmd.Printf("%s Sending SOS in %v seconds, press Enter to cancel\n", warningLabel, ticks)
	session.Press()

	presses := readPresses(cmd.InOrStdin())
	for {
		select {
		case _, ok := <-presses:
			if !ok {
				presses = nil
				continue
			}

			// Presses while the alert is in flight are ignored
			if session.State() == countdown.Counting && session.Press() == countdown.Idle {
				cmd.Println("SOS cancelled")
				return nil
			}

		case result := <-results:
			if result.err != nil {
				return formattedError("%v", result.outcome.Message)
			}

			cmd.Println(green(result.outcome.Message))
			for _, r := range result.outcome.Response.Results {
				cmd.Printf("  %v: %v\n", r.Number, r.Status)
			}
			return nil
		}
	}
}

// readPresses emits a value for every line read from r & closes once r is exhausted.
func readPresses(r io.Reader) <-chan struct{} {
	presses := make(chan struct{})

	go func() {
		defer close(presses)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case presses <- struct{}{}:
			case <-time.After(time.Minute):
				return
			}
		}
	}()

	return presses
}

func flagOrConfig(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}
