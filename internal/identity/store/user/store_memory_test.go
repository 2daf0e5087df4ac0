package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"civicpulse/internal/identity/models"
	"civicpulse/pkg/domain"
	"civicpulse/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *UserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) newUser(email string, role domain.Role) *models.User {
	u, err := models.NewUser(domain.UserID(uuid.New()), email, role, time.Now())
	s.Require().NoError(err)
	return u
}

func (s *UserStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds user by ID", func() {
		u := s.newUser("ada@example.org", domain.RoleCitizen)
		s.Require().NoError(s.store.Create(s.ctx, u))

		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u.Email, found.Email)
		s.Equal(0, found.Points)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, domain.UserID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate ID", func() {
		u := s.newUser("dup@example.org", domain.RoleCitizen)
		s.Require().NoError(s.store.Create(s.ctx, u))
		s.Require().ErrorIs(s.store.Create(s.ctx, u), sentinel.ErrDuplicate)
	})
}

func (s *UserStoreSuite) TestIncrementPoints() {
	s.Run("accumulates increments", func() {
		u := s.newUser("points@example.org", domain.RoleCitizen)
		s.Require().NoError(s.store.Create(s.ctx, u))

		s.Require().NoError(s.store.IncrementPoints(s.ctx, u.ID, 10))
		s.Require().NoError(s.store.IncrementPoints(s.ctx, u.ID, 1))

		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(11, found.Points)
	})

	s.Run("returns ErrNotFound for unknown user", func() {
		err := s.store.IncrementPoints(s.ctx, domain.UserID(uuid.New()), 1)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("no increment is lost under concurrency", func() {
		u := s.newUser("hot@example.org", domain.RoleCitizen)
		s.Require().NoError(s.store.Create(s.ctx, u))

		const goroutines = 50
		var wg sync.WaitGroup
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.store.IncrementPoints(s.ctx, u.ID, 1)
			}()
		}
		wg.Wait()

		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(goroutines, found.Points)
	})
}

func (s *UserStoreSuite) TestTopByPoints() {
	users := make([]*models.User, 3)
	for i, pts := range []int{5, 20, 10} {
		u := s.newUser(uuid.NewString()+"@example.org", domain.RoleCitizen)
		s.Require().NoError(s.store.Create(s.ctx, u))
		s.Require().NoError(s.store.IncrementPoints(s.ctx, u.ID, pts))
		users[i] = u
	}

	top, err := s.store.TopByPoints(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(users[1].ID, top[0].ID)
	s.Equal(users[2].ID, top[1].ID)
}

func (s *UserStoreSuite) TestSnapshotRestore() {
	u := s.newUser("snap@example.org", domain.RoleCitizen)
	s.Require().NoError(s.store.Create(s.ctx, u))

	snap := s.store.Snapshot()
	s.Require().NoError(s.store.IncrementPoints(s.ctx, u.ID, 10))

	s.store.Restore(snap)
	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(0, found.Points)
}
