// Package job runs background work on asynq, a Redis-backed task queue.
//
// The API process enqueues tasks through Client and, in the same process,
// runs the worker server that executes them.
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/commerce-admin/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Mailer is the email capability the job handlers depend on.
type Mailer interface {
	SendWelcomeEmail(to, firstName string) error
}

// Enqueuer is the subset of *asynq.Client used to push tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type JobService struct {
	Client Enqueuer
	server *asynq.Server
	mailer Mailer
	logger *zerolog.Logger
}

// NewJobService builds the asynq client and worker server on cfg's Redis.
// Queues are weighted critical:default:low = 6:3:1.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		logger: logger,
	}
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcome, j.handleWelcomeEmailTask)
	return mux
}

// Start launches the worker server in the background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(j.mux()); err != nil {
		return fmt.Errorf("starting job server: %w", err)
	}
	return nil
}

// Stop waits for running tasks and closes the enqueue client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("closing job client")
	}
}
