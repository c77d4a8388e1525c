package main

import "csreport/internal/app"

func main() {
	app.Main()
}
