package main

import "github.com/ashraf950/timesheet-client/cmd"

func main() {
	cmd.Execute()
}
