package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

type generateCmd struct {
	CampaignName string `name:"campaign-name" default:"CLI campaign" help:"Campaign name recorded on the input."`
	Industry     string `default:"other" help:"Industry code."`
	Objective    string `default:"awareness" help:"Campaign objective."`
	Location     string `help:"Target location."`
	AgeMin       int    `name:"age-min" default:"25" help:"Minimum target age."`
	AgeMax       int    `name:"age-max" default:"45" help:"Maximum target age."`
	Budget       string `default:"medium" help:"Budget level."`
	Interests    string `help:"Comma separated interests added to every generated segment."`
	Endpoint     string `env:"AUDIENCE_ENDPOINT" help:"Remote inference base URL. Empty uses the mock generator."`
	Format       string `enum:"json,yaml" default:"json" help:"Output format."`
	NoLatency    bool   `name:"no-latency" help:"Skip the simulated generation delay of the mock generator."`

	out io.Writer
}

// generateReport is printed by the generate command.
type generateReport struct {
	Input    audience.TargetingInput `json:"input" yaml:"input"`
	Records  []audience.Record       `json:"records" yaml:"records"`
	Insights audience.Insights       `json:"insights" yaml:"insights"`
}

func (cmd *generateCmd) Run(ctx context.Context, app *cli) error {
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Endpoint != "" {
		cfg.Generation.Endpoint = cmd.Endpoint
	}
	if cmd.NoLatency {
		cfg.Generation.Latency = 0
	}
	generator, err := newGenerator(cfg.Generation)
	if err != nil {
		return err
	}
	return cmd.generate(ctx, generator)
}

func (cmd *generateCmd) input() audience.TargetingInput {
	return audience.TargetingInput{
		CampaignName:      cmd.CampaignName,
		Industry:          cmd.Industry,
		CampaignObjective: cmd.Objective,
		TargetLocation:    cmd.Location,
		AgeRange:          audience.AgeRange{Min: cmd.AgeMin, Max: cmd.AgeMax},
		Budget:            cmd.Budget,
		Interests:         cmd.Interests,
	}.WithDefaults()
}

func (cmd *generateCmd) generate(ctx context.Context, generator audience.Generator) error {
	input := cmd.input()
	if err := input.Validate(); err != nil {
		return err
	}
	records, err := generator.Generate(ctx, input)
	if err != nil {
		return fmt.Errorf("audiencectl: generate: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("audiencectl: generator returned no audiences")
	}
	records = audience.NormalizeBatch(records)
	report := generateReport{
		Input:    input,
		Records:  records,
		Insights: audience.Derive(records),
	}
	return writeReport(cmd.writer(), cmd.Format, report)
}

func (cmd *generateCmd) writer() io.Writer {
	if cmd.out != nil {
		return cmd.out
	}
	return os.Stdout
}

func writeReport(w io.Writer, format string, report generateReport) error {
	if format == "yaml" {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(report)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
