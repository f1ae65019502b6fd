package main

import "github.com/passvault/passvault-server/cmd/client/cmd"

func main() {
	cmd.Execute()
}
