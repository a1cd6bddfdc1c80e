package cmd

import (
	"context"
	"fmt"

	"github.com/Daskott/swiftly/client"
	"github.com/Daskott/swiftly/shared"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pageArg int

func createLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Lists the SOS alerts the server has sent, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, clientConfig())
		},
	}

	cmd.Flags().IntVarP(&pageArg, "page", "p", 1, "page of alerts to list")
	cmd.Flags().StringVarP(&serverURLArg, "server", "s", "", "swiftly server url (default is server.url in config)")

	return cmd
}

func runLogs(cmd *cobra.Command, config *viper.Viper) error {
	if pageArg < 1 {
		return fmt.Errorf("invalid argument \"%v\", --page must be > 0", pageArg)
	}

	logs, err := client.New(flagOrConfig(serverURLArg, config.GetString("server.url"))).
		Logs(context.Background(), pageArg)
	if err != nil {
		return formattedError("%v", err)
	}

	if len(logs.Data) == 0 {
		cmd.Println("No alerts sent yet")
		return nil
	}

	for _, entry := range logs.Data {
		cmd.Printf("%v  %v %v @ %v\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.Name, entry.Surname, entry.Coordinates)
		for _, result := range entry.Results {
			cmd.Printf("  %v: %v\n", result.Number, resultStatus(result))
		}
	}

	if logs.Paging != nil {
		cmd.Printf("\npage %v of %v (%v alerts)\n", logs.Paging.Page, logs.Paging.Pages, logs.Paging.Total)
	}
	return nil
}

func resultStatus(result shared.DispatchResult) string {
	if result.Status == shared.SENT_STATUS {
		return green(result.Status)
	}
	return red(fmt.Sprintf("%v (%v)", result.Status, result.Error))
}
