package main

import "github.com/susnata2002/ai-scheduling-bot/cmd"

func main() {
	cmd.Execute()
}
