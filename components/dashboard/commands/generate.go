package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

// GenerateAudiencesInput submits the targeting form of a session. With Wait set the
// command blocks until the batch resolved and returns its error.
type GenerateAudiencesInput struct {
	SessionID string                  `json:"session_id"`
	Input     audience.TargetingInput `json:"input"`
	Wait      bool                    `json:"wait"`
	Actor     Actor                   `json:"actor"`
	// Result, when set, receives the submitted batch number and, with Wait, its records.
	Result *GenerateAudiencesResult `json:"-"`
}

// GenerateAudiencesResult reports the outcome of a generation request.
type GenerateAudiencesResult struct {
	Batch   int               `json:"batch"`
	Records []audience.Record `json:"records,omitempty"`
}

type submitService interface {
	Submit(ctx context.Context, sessionID string, input audience.TargetingInput) (*audience.Job, error)
}

// GenerateAudiencesCommand wraps Service.Submit.
type GenerateAudiencesCommand struct {
	service   submitService
	telemetry Telemetry
}

// NewGenerateAudiencesCommand builds the command.
func NewGenerateAudiencesCommand(service submitService, telemetry Telemetry) *GenerateAudiencesCommand {
	return &GenerateAudiencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[GenerateAudiencesInput] = (*GenerateAudiencesCommand)(nil)

// Execute starts the generation job.
func (c *GenerateAudiencesCommand) Execute(ctx context.Context, msg GenerateAudiencesInput) error {
	if c.service == nil {
		return errors.New("generate command requires service")
	}
	ctx = msg.Actor.bind(ctx)
	job, err := c.service.Submit(ctx, msg.SessionID, msg.Input)
	if err != nil {
		return err
	}
	result := GenerateAudiencesResult{Batch: job.Batch()}
	if msg.Wait {
		records, err := job.Wait(ctx)
		if err != nil {
			return err
		}
		result.Records = records
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	c.telemetry.Record(ctx, "dashboard.command.generate", map[string]any{
		"session_id": msg.SessionID,
		"batch":      result.Batch,
		"wait":       msg.Wait,
	})
	return nil
}
