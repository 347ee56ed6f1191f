package main

import "github.com/Tiliavir/paywindow-tracker/cmd"

func main() {
	cmd.Execute()
}
