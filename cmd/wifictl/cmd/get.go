package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	"github.com/dogeorg/wifiinfo/pkg/client"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current wifi connection as JSON (null without permission).",
	Run: func(cmd *cobra.Command, args []string) {
		remote, _ := cmd.Flags().GetString("remote")

		var snap *wifiinfo.Snapshot
		if remote != "" {
			s, err := client.New(remote).GetSnapshot(cmd.Context())
			if err != nil {
				logrus.Errorf("Failed to query %s: %v", remote, err)
				os.Exit(1)
			}
			snap = s
		} else {
			module, cleanup, err := newModule(cmd)
			if err != nil {
				logrus.Errorf("Failed to set up: %v", err)
				os.Exit(1)
			}
			snap = <-module.GetCurrentSnapshotAsync(cmd.Context())
			module.OnHostDestroy()
			cleanup()
		}

		out, err := json.Marshal(snap)
		if err != nil {
			logrus.Errorf("Failed to encode snapshot: %v", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}

func init() {
	getCmd.Flags().StringP("remote", "r", "", "Query a wifiinfod at this URL instead of this host, ie: http://127.0.0.1:8089")
	rootCmd.AddCommand(getCmd)
}
