package main

import "bsonkit/cmd/bsonctl/cmd"

func main() {
	cmd.Execute()
}
