package domain

import "time"

// Chat represents a bot chat bound to an account
type Chat struct {
	ChatID     int64
	Login      string
	Authorized bool
	CreatedAt  time.Time
}

// ChatStep represents chat's current dialog step
type ChatStep string

const (
	StepIdle                 ChatStep = "idle"
	StepWaitingLogin         ChatStep = "waiting_login"
	StepWaitingLoginPassword ChatStep = "waiting_login_password"
	StepWaitingNewPassword   ChatStep = "waiting_new_password"
	StepWaitingConfirmation  ChatStep = "waiting_confirmation"
)

