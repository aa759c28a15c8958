package main

import "github.com/vcns/bell-timer/cmd/bell-updater/cmd"

func main() {
	cmd.Execute()
}
