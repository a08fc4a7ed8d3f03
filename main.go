// Copyright © 2024 The rsresolve authors

package main

import "github.com/luthersystems/rsresolve/cmd"

func main() {
	cmd.Execute()
}
