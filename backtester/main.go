package main

import (
	"context"
	"fmt"
	"os"

	"github.com/candlelab/backtester/log"
	"github.com/candlelab/backtester/signaler"
	"github.com/urfave/cli/v2"
)

const version = "v0.1.0"

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "backtester"
	app.Version = version
	app.EnableBashCompletion = true
	app.Usage = "replays historical candles through a trading strategy and reports performance"
	app.Commands = []*cli.Command{
		runCommand,
		validateCommand,
		strategiesCommand,
		configCommand,
	}
	return app
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Capture cancel for interrupt
		<-signaler.WaitForInterrupt()
		cancel()
		fmt.Println("backtest interrupted")
	}()

	err := newApp().RunContext(ctx, os.Args)
	cancel()
	if cErr := log.CloseLogger(); cErr != nil {
		fmt.Fprintln(os.Stderr, cErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
