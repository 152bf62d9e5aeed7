package main

import (
	"fightstats-backend/cmd/fightstats/commands"
	"fightstats-backend/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	err := commands.Execute(ctx)
	if err != nil {
		serviceutil.Fatal("fightstats failed", err)
	}
}
