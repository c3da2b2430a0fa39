package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

var (
	version = "dev"
	cli     struct {
		Dev     bool `help:"Enable development logging." env:"DEV"`
		Version kong.VersionFlag

		Serve          ServeCmd          `cmd:"" default:"1" help:"Start the HTTP API."`
		Worker         WorkerCmd         `cmd:"" help:"Run the background job worker."`
		Migrate        MigrateCmd        `cmd:"" help:"Create or update the database schema."`
		Seed           SeedCmd           `cmd:"" help:"Load tenants and content from a YAML file."`
		GenerateModels GenerateModelsCmd `cmd:"" help:"Generate typed query helpers from the models."`
		ColumnReport   ColumnReportCmd   `cmd:"" help:"Report differences between the models and the live schema."`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("tenant-site-backend"),
		kong.Description("Multi-tenant site and storefront backend."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&Globals{Dev: cli.Dev, Version: version})
	cmd.FatalIfErrorf(err)
}
