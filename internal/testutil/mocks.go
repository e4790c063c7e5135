package testutil

import (
	"context"
	"time"

	"credflow/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockChatRepository is a mock for ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) IsAuthorized(chatID int64) (bool, error) {
	args := m.Called(chatID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatRepository) GetChat(chatID int64) (*domain.Chat, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) AuthorizeChat(chatID int64, login string) error {
	args := m.Called(chatID, login)
	return args.Error(0)
}

func (m *MockChatRepository) EnsureChatExists(chatID int64) error {
	args := m.Called(chatID)
	return args.Error(0)
}

func (m *MockChatRepository) RevokeChat(chatID int64) error {
	args := m.Called(chatID)
	return args.Error(0)
}

// MockAccountRepository is a mock for AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, login, passwordHash string) error {
	args := m.Called(ctx, login, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) GetPasswordHash(ctx context.Context, login string) (string, error) {
	args := m.Called(ctx, login)
	return args.String(0), args.Error(1)
}

func (m *MockAccountRepository) ResetPassword(ctx context.Context, token, passwordHash string) error {
	args := m.Called(ctx, token, passwordHash)
	return args.Error(0)
}

// MockResetTokenRepository is a mock for ResetTokenRepository
type MockResetTokenRepository struct {
	mock.Mock
}

func (m *MockResetTokenRepository) CreateToken(ctx context.Context, token, login string, expiresAt time.Time) error {
	args := m.Called(ctx, token, login, expiresAt)
	return args.Error(0)
}

func (m *MockResetTokenRepository) DeleteExpired() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockCredentialChangeService is a mock for workflow.CredentialChangeService
type MockCredentialChangeService struct {
	mock.Mock
}

func (m *MockCredentialChangeService) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockAuthService is a mock for workflow.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, creds domain.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

// MockNavigator is a mock for workflow.Navigator
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) NavigateToRoot() {
	m.Called()
}

// MockNotifier is a mock for workflow.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Success(msg string) {
	m.Called(msg)
}

func (m *MockNotifier) Failure(msg string) {
	m.Called(msg)
}
