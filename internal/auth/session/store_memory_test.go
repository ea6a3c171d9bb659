package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"olivecrm/pkg/platform/sentinel"
)

type MemorySessionSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *MemorySessionSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestMemorySessionSuite(t *testing.T) {
	suite.Run(t, new(MemorySessionSuite))
}

func (s *MemorySessionSuite) TestSaveAndFind() {
	sess := Session{
		ID:        "sess-1",
		Username:  "marta",
		Device:    "Firefox 128 on Linux",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.store.Save(s.ctx, sess))

	found, err := s.store.Find(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal("marta", found.Username)
	s.Equal(sess.Device, found.Device)
}

func (s *MemorySessionSuite) TestFindUnknown() {
	_, err := s.store.Find(s.ctx, "missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemorySessionSuite) TestExpiredSessionIsDropped() {
	sess := Session{
		ID:        "sess-2",
		Username:  "marta",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	s.Require().NoError(s.store.Save(s.ctx, sess))

	_, err := s.store.Find(s.ctx, "sess-2")
	s.Require().ErrorIs(err, sentinel.ErrExpired)

	// A second lookup sees it gone entirely.
	_, err = s.store.Find(s.ctx, "sess-2")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemorySessionSuite) TestDelete() {
	sess := Session{ID: "sess-3", Username: "marta", ExpiresAt: time.Now().Add(time.Hour)}
	s.Require().NoError(s.store.Save(s.ctx, sess))

	s.Require().NoError(s.store.Delete(s.ctx, "sess-3"))
	s.Require().ErrorIs(s.store.Delete(s.ctx, "sess-3"), sentinel.ErrNotFound)
}
