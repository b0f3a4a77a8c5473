package main

import "tripletuploader/cmd"

func main() {
	cmd.Execute()
}
