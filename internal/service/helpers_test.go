package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/config"
	"github.com/projectk/projectk-backend/internal/llm"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTExpiry:        time.Hour,
		BcryptCost:       bcrypt.MinCost,
		AITimeout:        time.Second,
		ChatHistoryTurns: 10,
		PracticeFallback: true,
	}
}

type fixture struct {
	stores   *testutil.Stores
	auth     *AuthService
	users    *UserService
	chat     *ChatService
	practice *PracticeService
	classes  *ClassService
	dash     *DashboardService
}

func newFixture(t *testing.T, client llm.Client) *fixture {
	t.Helper()
	cfg := testConfig()
	st := testutil.NewStores()
	log := zerolog.Nop()

	auth := NewAuthService(cfg, st.Tokens)
	tutor := NewTutorRouter(client, cfg.AITimeout, cfg.ChatHistoryTurns, log)
	return &fixture{
		stores:   st,
		auth:     auth,
		users:    NewUserService(st.Users, auth),
		chat:     NewChatService(st.Sessions, st.Messages, tutor, st.Activity, log),
		practice: NewPracticeService(st.Practice, client, cfg.AITimeout, cfg.PracticeFallback, log),
		classes:  NewClassService(st.Classes),
		dash:     NewDashboardService(st.Dashboard, st.Classes),
	}
}

func (f *fixture) register(t *testing.T, email string, userType model.UserType) *model.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), &model.RegisterRequest{
		Email:    email,
		Password: "secret123",
		Name:     "Test " + string(userType),
		UserType: userType,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, u.ID)
	return u
}
