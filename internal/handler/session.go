package handler

import (
	"credflow/internal/domain"
	"credflow/internal/eventloop"
	"credflow/internal/workflow"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const sessionQueueSize = 16

// session is the open workflow of one chat. Every field except loop is
// touched only from tasks running on loop.
type session struct {
	chatID int64
	loop   *eventloop.Loop

	step        domain.ChatStep
	change      *workflow.ChangePasswordFlow
	login       *workflow.LoginFlow
	report      domain.PasswordStability
	unsubscribe func()
}

func newSession(chatID int64) *session {
	s := &session{
		chatID: chatID,
		loop:   eventloop.New(sessionQueueSize),
		step:   domain.StepIdle,
	}
	s.loop.Start()
	return s
}

// close ends the workflow and stops the loop. Must run on the loop.
func (s *session) close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.change != nil {
		s.change.Teardown()
	}
	if s.login != nil {
		s.login.Teardown()
	}
	s.step = domain.StepIdle
	s.loop.Stop()
}

// shutdown closes the session from outside its loop
func (s *session) shutdown() {
	if err := s.loop.Do(s.close); err != nil {
		s.loop.Stop()
	}
}

// getSession returns the open session of chat, if any
func (h *Handler) getSession(chatID int64) *session {
	h.sessionMux.Lock()
	defer h.sessionMux.Unlock()
	return h.sessions[chatID]
}

// replaceSession registers s for its chat and closes the previous one
func (h *Handler) replaceSession(s *session) {
	h.sessionMux.Lock()
	prev := h.sessions[s.chatID]
	h.sessions[s.chatID] = s
	h.sessionMux.Unlock()

	if prev != nil {
		prev.shutdown()
	}
}

// endSession closes the open session of chat from an update goroutine
func (h *Handler) endSession(chatID int64) {
	h.sessionMux.Lock()
	s := h.sessions[chatID]
	delete(h.sessions, chatID)
	h.sessionMux.Unlock()

	if s != nil {
		s.shutdown()
	}
}

// forget drops s from the registry unless a newer session replaced it
func (h *Handler) forget(s *session) {
	h.sessionMux.Lock()
	defer h.sessionMux.Unlock()
	if h.sessions[s.chatID] == s {
		delete(h.sessions, s.chatID)
	}
}

// chatNavigator ends the session and shows the main menu
type chatNavigator struct {
	h       *Handler
	chat    *tele.Chat
	session *session
	// before runs ahead of the teardown, still on the loop
	before func()
}

// NavigateToRoot runs on the session loop
func (n *chatNavigator) NavigateToRoot() {
	if n.before != nil {
		n.before()
	}
	n.h.forget(n.session)
	n.session.close()
	n.h.sendMainMenu(n.chat)
}

// chatNotifier sends workflow notices to the chat
type chatNotifier struct {
	sender Sender
	chat   *tele.Chat
	logger *zap.Logger
}

func (n *chatNotifier) Success(msg string) {
	n.send("✅ "+msg, nil)
}

func (n *chatNotifier) Failure(msg string) {
	n.send("⚠️ "+msg, confirmMarkup())
}

func (n *chatNotifier) send(text string, markup *tele.ReplyMarkup) {
	if n.sender == nil {
		return
	}
	var err error
	if markup != nil {
		_, err = n.sender.Send(n.chat, text, markup)
	} else {
		_, err = n.sender.Send(n.chat, text)
	}
	if err != nil {
		n.logger.Warn("Failed to send notice", zap.Error(err), zap.Int64("chat_id", n.chat.ID))
	}
}

// loginNotifier only reports rejected logins, success shows the menu instead
type loginNotifier struct {
	chatNotifier
}

func (n *loginNotifier) Success(string) {}

func (n *loginNotifier) Failure(msg string) {
	n.send("⛔️ "+msg, cancelMarkup())
}

