package main

import "github.com/KaramelBytes/blogctl/cmd"

func main() {
	cmd.Execute()
}
