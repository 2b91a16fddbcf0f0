package main

import "github.com/earthdata-tools/h5remote/cmd"

func main() {
	cmd.Execute()
}
