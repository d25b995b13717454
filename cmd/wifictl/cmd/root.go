package cmd

import (
	"os"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	network_wifi "github.com/dogeorg/wifiinfo/pkg/system/network/wifi"
	"github.com/dogeorg/wifiinfo/pkg/system/permission"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wifictl",
	Short: "wifictl reports the current wifi connection",
	Long:  `wifictl reports the current wifi connection (ssid, bssid, ip), either from this host or from a running wifiinfod`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("iface", "i", "", "Wifi interface to report on (default: first associated)")
	rootCmd.PersistentFlags().String("grant-file", "", "Only read the connection while this file exists")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Be verbose")
}

// newModule builds a local module from the persistent flags.
func newModule(cmd *cobra.Command, opts ...wifiinfo.ObserverOption) (*wifiinfo.Module, func(), error) {
	iface, _ := cmd.Flags().GetString("iface")
	grantFile, _ := cmd.Flags().GetString("grant-file")
	verbose, _ := cmd.Flags().GetBool("verbose")

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	var perm wifiinfo.PermissionChecker = permission.Static(true)
	cleanup := func() {}
	if grantFile != "" {
		g, err := permission.NewGrantFile(grantFile, log)
		if err != nil {
			return nil, nil, err
		}
		perm = g
		cleanup = func() { g.Close() }
	}

	conn := network_wifi.NewConnectivity(iface, log)
	return wifiinfo.NewModule(conn, perm, log, opts...), cleanup, nil
}
