package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	Config   string      `short:"c" type:"path" env:"AUDIENCE_CONFIG" help:"Optional YAML configuration file."`
	LogLevel string      `name:"log-level" env:"AUDIENCE_LOG_LEVEL" help:"Override log.level (debug, info, warn, error)."`
	LogFmt   string      `name:"log-format" env:"AUDIENCE_LOG_FORMAT" help:"Override log.format (json or console)."`
	Serve    serveCmd    `cmd:"" help:"Serve the audience targeting dashboard."`
	Generate generateCmd `cmd:"" help:"Generate one audience batch and print it."`
	Scaffold scaffoldCmd `cmd:"" help:"Scaffold a widget definition, provider stub, and manifest entry."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("audiencectl"),
		kong.Description("Audience targeting dashboard server and tooling."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	kctx.FatalIfErrorf(kctx.Run(&app))
}
