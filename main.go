package main

import "github.com/dsd7888/EduNexusAI-sub000/cmd"

func main() {
	cmd.Execute()
}
