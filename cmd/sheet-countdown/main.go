package main

import "github.com/pfrederiksen/sheet-countdown/internal/cli"

func main() {
	cli.Execute()
}
