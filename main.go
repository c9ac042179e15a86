package main

import "github.com/redactyl/confscan/cmd/confscan"

func main() { confscan.Execute() }
