package main

import "github.com/vcns/bell-timer/cmd/bell-server/cmd"

func main() {
	cmd.Execute()
}
