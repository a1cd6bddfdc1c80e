/*
Copyright © 2021 Edmond Cotterell

*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	devConfig "github.com/Daskott/swiftly/dev/config"
	"github.com/Daskott/swiftly/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serverConfigFile string

func createServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start a swiftly server",
		Long: `The swiftly server relays SOS alerts to emergency contacts over SMS or WhatsApp
& keeps a log of every alert it has sent`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverConfigFile == "" && !isDevEnv {
				return formattedError("--sconfig is required when not running with --dev")
			}

			server.Start(serverConfig(), isDevEnv)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")

	return cmd
}

func serverConfig() *viper.Viper {
	config := viper.New()

	if isDevEnv && serverConfigFile == "" {
		serverConfigFile = devConfigFilePath()
	}

	config.SetConfigFile(serverConfigFile)

	// Secrets can be kept out of the config file & read from the system ENV instead.
	// FYI: The env var overrides whatever is in the config file
	config.BindEnv("twilio.accountSid", "TWILIO_ACCOUNT_SID")
	config.BindEnv("twilio.authToken", "TWILIO_AUTH_TOKEN")
	config.BindEnv("google.applicationCredentials", "GOOGLE_APPLICATION_CREDENTIALS")

	config.AutomaticEnv() // read in environment variables that match

	if err := config.ReadInConfig(); err != nil {
		log.Panic(fmt.Sprintf("error reading server config file: %v", err))
	}

	return config
}

// devConfigFilePath returns dev/config/server.yml, creating it on first use.
func devConfigFilePath() string {
	configDir, err := os.Getwd()
	if err != nil {
		log.Panic(err)
	}

	configFilePath := filepath.Join(configDir, "dev", "config", "server.yml")
	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		err = os.MkdirAll(filepath.Dir(configFilePath), 0700)
		if err == nil {
			err = os.WriteFile(configFilePath, []byte(devConfig.SERVER_YML), 0600)
		}

		if err != nil {
			log.Panic(err)
		}
	}

	return configFilePath
}
