// Package lib groups integrations that sit outside the request path:
// background jobs on asynq and email delivery through Resend.
package lib
