package main

import "github.com/kevinxuez/social-map/internal/cli"

func main() {
	cli.Execute()
}
