package main

import "github.com/caffeinepub/m-employed/cmd/mectl/cmd"

func main() {
	cmd.Execute()
}
