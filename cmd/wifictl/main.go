package main

import "github.com/dogeorg/wifiinfo/cmd/wifictl/cmd"

func main() {
	cmd.Execute()
}
