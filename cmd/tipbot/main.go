package main

import "github.com/vietddude/tipbot/internal/cli"

func main() {
	cli.Execute()
}
