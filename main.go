package main

import "github.com/meysamhadeli/livefile/cmd"

func main() {
	cmd.Execute()
}
