package main

import "imgcvt/cmd"

func main() {
	cmd.Execute()
}
