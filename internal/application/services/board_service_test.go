package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/ports"
)

type fakeBoardRepo struct {
	mu     sync.Mutex
	boards map[uuid.UUID]*entities.Board
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{boards: make(map[uuid.UUID]*entities.Board)}
}

func (f *fakeBoardRepo) Create(_ context.Context, b *entities.Board) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.boards[b.ID] = &cp
	return nil
}

func (f *fakeBoardRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return nil, entities.ErrBoardNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBoardRepo) Update(_ context.Context, b *entities.Board) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.boards[b.ID]; !ok {
		return entities.ErrBoardNotFound
	}
	cp := *b
	f.boards[b.ID] = &cp
	return nil
}

func (f *fakeBoardRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.boards[id]; !ok {
		return entities.ErrBoardNotFound
	}
	delete(f.boards, id)
	return nil
}

func (f *fakeBoardRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*entities.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Board
	for _, b := range f.boards {
		if b.OwnerID == ownerID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBoardRepo) ListPublic(_ context.Context, limit, offset int) ([]*entities.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Board
	for _, b := range f.boards {
		if b.IsPublic {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entities.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, u *entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return entities.ErrUserNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func newBoardFixture(t *testing.T) (*BoardService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	return NewBoardService(newFakeBoardRepo(), users, testLogger(t)), users
}

func seedUser(t *testing.T, users *fakeUserRepo, role entities.UserRole) *entities.User {
	t.Helper()
	u := &entities.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Username: uuid.NewString()[:8],
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestBoardVisibility(t *testing.T) {
	svc, users := newBoardFixture(t)
	ctx := context.Background()

	owner := seedUser(t, users, entities.UserRoleEditor)
	stranger := seedUser(t, users, entities.UserRoleEditor)

	private, err := svc.CreateBoard(ctx, owner.ID, ports.CreateBoardRequest{Name: "home"})
	require.NoError(t, err)
	public, err := svc.CreateBoard(ctx, owner.ID, ports.CreateBoardRequest{Name: "shared", IsPublic: true})
	require.NoError(t, err)

	// Owner sees both.
	_, err = svc.GetBoard(ctx, private.ID, owner.ID)
	assert.NoError(t, err)

	// Strangers and anonymous callers see only public boards.
	_, err = svc.GetBoard(ctx, public.ID, stranger.ID)
	assert.NoError(t, err)
	_, err = svc.GetBoard(ctx, public.ID, uuid.Nil)
	assert.NoError(t, err)
	_, err = svc.GetBoard(ctx, private.ID, stranger.ID)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
	_, err = svc.GetBoard(ctx, private.ID, uuid.Nil)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestBoardEditAuthorization(t *testing.T) {
	svc, users := newBoardFixture(t)
	ctx := context.Background()

	owner := seedUser(t, users, entities.UserRoleEditor)
	admin := seedUser(t, users, entities.UserRoleAdmin)
	stranger := seedUser(t, users, entities.UserRoleEditor)

	board, err := svc.CreateBoard(ctx, owner.ID, ports.CreateBoardRequest{Name: "home", IsPublic: true})
	require.NoError(t, err)

	assert.NoError(t, svc.AuthorizeEdit(ctx, board.ID, owner.ID))
	assert.NoError(t, svc.AuthorizeEdit(ctx, board.ID, admin.ID))
	// Public visibility does not grant edit rights.
	assert.ErrorIs(t, svc.AuthorizeEdit(ctx, board.ID, stranger.ID), entities.ErrUnauthorized)
}

func TestBoardUpdateAndDelete(t *testing.T) {
	svc, users := newBoardFixture(t)
	ctx := context.Background()

	owner := seedUser(t, users, entities.UserRoleEditor)
	board, err := svc.CreateBoard(ctx, owner.ID, ports.CreateBoardRequest{Name: "draft"})
	require.NoError(t, err)

	name := "final"
	isPublic := true
	updated, err := svc.UpdateBoard(ctx, board.ID, owner.ID, ports.UpdateBoardRequest{Name: &name, IsPublic: &isPublic})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Name)
	assert.True(t, updated.IsPublic)

	require.NoError(t, svc.DeleteBoard(ctx, board.ID, owner.ID))
	_, err = svc.GetBoard(ctx, board.ID, owner.ID)
	assert.ErrorIs(t, err, entities.ErrBoardNotFound)
}
