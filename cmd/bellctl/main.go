package main

import "github.com/vcns/bell-timer/cmd/bellctl/cmd"

func main() {
	cmd.Execute()
}
