/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	devConfig "github.com/Daskott/swiftly/dev/config"
	"github.com/Daskott/swiftly/profile"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	isDevEnv bool

	yellow       = color.New(color.FgYellow).SprintFunc()
	red          = color.New(color.FgRed).SprintFunc()
	green        = color.New(color.FgGreen).SprintFunc()
	warningLabel = yellow("Warning:")
)

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(loadDotEnv)

	rootCmd = createRootCmd()
	rootCmd.AddCommand(createServerCmd(), createRegisterCmd(), createSOSCmd(), createLogsCmd())
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "swiftly",
		Short: `swiftly sends an SOS to your emergency contacts.

Register your details & contacts once. When you need help run 'swiftly sos',
and after a short countdown your contacts get a message with your location.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.swiftly.yaml)")
	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}

// loadDotEnv reads secrets such as TWILIO_AUTH_TOKEN from a .env file, when there is one.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, warningLabel, err)
	}
}

// ---------------------------------------------------------------------------------//
// Config Helpers
// --------------------------------------------------------------------------------//

// clientConfig reads in config file and ENV variables & returns a single
// '*viper.Viper' config object
func clientConfig() *viper.Viper {
	config := viper.New()

	if cfgFile != "" {
		// Use config file from the flag.
		config.SetConfigFile(cfgFile)
	} else {
		configName, configDir, err := defaultCfgNameAndDir()
		cobra.CheckErr(err)

		// If config file is not found, create one using DEFAULT_CLIENT_YML
		configFilePath := filepath.Join(configDir, configName)
		if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
			err = os.WriteFile(configFilePath, []byte(devConfig.DEFAULT_CLIENT_YML), 0600)
			cobra.CheckErr(err)
		}

		config.SetConfigFile(configFilePath)
		config.SetConfigType("yaml")
	}

	config.SetDefault("server.url", "http://localhost:3000")
	config.SetDefault("sos.countdown", 5)

	// SWIFTLY_SERVER_URL overrides server.url etc.
	config.SetEnvPrefix("swiftly")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.BindEnv("server.url")
	config.BindEnv("location.coordinates")

	config.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", config.ConfigFileUsed())
	}

	return config
}

func defaultCfgNameAndDir() (configName string, configDir string, err error) {
	configName = ".swiftly.yaml"

	// Use home directory for production
	configDir, err = os.UserHomeDir()
	if err != nil {
		return "", "", err
	}

	if isDevEnv {
		configName = ".swiftly.dev.yaml"
		configDir, err = os.Getwd()
		if err != nil {
			return "", "", err
		}
	}

	return configName, configDir, err
}

// profilePath is 'profile.path' or user_data.txt next to the config file in use.
func profilePath(config *viper.Viper) string {
	if path := config.GetString("profile.path"); path != "" {
		return path
	}

	if config.ConfigFileUsed() != "" {
		return filepath.Join(filepath.Dir(config.ConfigFileUsed()), profile.DEFAULT_FILE_NAME)
	}

	homeDir, err := os.UserHomeDir()
	cobra.CheckErr(err)

	return filepath.Join(homeDir, profile.DEFAULT_FILE_NAME)
}

func formattedError(format string, a ...interface{}) error {
	return fmt.Errorf(red(format), a...)
}
