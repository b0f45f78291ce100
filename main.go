package main

import "github.com/ldworks/trainee-management/cmd"

func main() {
	cmd.Execute()
}
