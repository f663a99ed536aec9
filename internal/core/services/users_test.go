package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
	"github.com/pratham-srivastava-07/Nexus/internal/plugins/memory"
)

func Test_ResolveOrCreate_First_Contact(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := NewUserService(slog.Default(), memory.NewUserRepo(memory.NewStore()))

	u, err := svc.ResolveOrCreate(ctx, "+15550001111", "alice")
	req.NoError(err)
	req.Equal("alice", u.Username)
	req.NotEmpty(u.ID)

	// Same phone resolves to the same user.
	again, err := svc.ResolveOrCreate(ctx, "+15550001111", "alice")
	req.NoError(err)
	req.Equal(u.ID, again.ID)
}

func Test_ResolveOrCreate_Placeholder_Name(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := NewUserService(slog.Default(), memory.NewUserRepo(memory.NewStore()))

	u, err := svc.ResolveOrCreate(ctx, "+15550001111", "")
	req.NoError(err)
	req.Equal(domain.PlaceholderUsername, u.Username)
}

func Test_ResolveOrCreate_Username_Upgrade_Only(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := NewUserService(slog.Default(), memory.NewUserRepo(memory.NewStore()))

	u, err := svc.ResolveOrCreate(ctx, "+15550001111", "")
	req.NoError(err)
	req.Equal(domain.PlaceholderUsername, u.Username)

	// A real name replaces the placeholder.
	u, err = svc.ResolveOrCreate(ctx, "+15550001111", "alice")
	req.NoError(err)
	req.Equal("alice", u.Username)

	// Blank and placeholder registrations never downgrade it.
	u, err = svc.ResolveOrCreate(ctx, "+15550001111", "")
	req.NoError(err)
	req.Equal("alice", u.Username)

	u, err = svc.ResolveOrCreate(ctx, "+15550001111", domain.PlaceholderUsername)
	req.NoError(err)
	req.Equal("alice", u.Username)
}

func Test_ResolveOrCreate_Requires_Phone(t *testing.T) {
	req := require.New(t)
	svc := NewUserService(slog.Default(), memory.NewUserRepo(memory.NewStore()))

	_, err := svc.ResolveOrCreate(context.Background(), "", "alice")
	req.ErrorIs(err, domain.ErrInvalidFrame)
}
