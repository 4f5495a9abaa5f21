package main

import (
	"context"
	"os"

	"triagebot/internal/cli"
	"triagebot/internal/platform/logger"
)

func main() {
	logger.Init(logger.FromEnv())
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}
