package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the wifi connection every time it changes, until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		interval, _ := cmd.Flags().GetDuration("interval")

		module, cleanup, err := newModule(cmd, wifiinfo.WithPollInterval(interval))
		if err != nil {
			logrus.Errorf("Failed to set up: %v", err)
			os.Exit(1)
		}
		defer cleanup()

		sub := module.AddChangeListener(func(s wifiinfo.Snapshot) {
			out, _ := json.Marshal(s)
			fmt.Println(string(out))
		})

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		sub.Remove()
		module.OnHostDestroy()
	},
}

func init() {
	watchCmd.Flags().Duration("interval", wifiinfo.DefaultPollInterval, "Poll interval")
	rootCmd.AddCommand(watchCmd)
}
