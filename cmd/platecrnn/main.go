package main

import "github.com/MeKo-Tech/platecrnn/cmd/platecrnn/cmd"

func main() {
	cmd.Execute()
}
