package main

import "github.com/frahmantamala/practice-management/cmd"

func main() {
	cmd.Execute()
}
