package main

import "board-backend/cmd"

func main() {
	cmd.Run()
}
