package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/commerce-admin/internal/config"
	"github.com/deppfellow/commerce-admin/internal/lib/email"
	"github.com/hibiken/asynq"
)

// InitHandlers wires the Resend client the task handlers send through.
func (j *JobService) InitHandlers(cfg *config.Config) {
	j.mailer = email.NewClient(cfg, j.logger)
}

func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", "welcome").
		Str("to", p.To).
		Logger()

	log.Info().Msg("processing welcome email task")

	if j.mailer == nil {
		return fmt.Errorf("welcome email: mailer not initialized")
	}

	if err := j.mailer.SendWelcomeEmail(p.To, p.FirstName); err != nil {
		log.Error().Err(err).Msg("failed to send welcome email")
		return err
	}

	log.Info().Msg("sent welcome email")
	return nil
}
