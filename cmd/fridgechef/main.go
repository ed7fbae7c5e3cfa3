package main

import "github.com/vietddude/fridgechef/internal/cli"

func main() {
	cli.Execute()
}
