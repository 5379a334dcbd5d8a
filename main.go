package main

import "github.com/jsphweid/chordview/cmd"

func main() {
	cmd.Execute()
}
