package main

import "github.com/rheyna/duncord/tools"

func main() {
	tools.DBcheck()
}
