package plumbing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type HandleSuite struct {
	suite.Suite
}

func TestHandleSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(HandleSuite))
}

func (s *HandleSuite) TestNewHandle() {
	h := NewHandle(3, 0)
	s.False(h.IsZero())
	s.Equal(uint32(3), h.Store())

	i, ok := h.Index()
	s.True(ok)
	s.Equal(uint64(0), i)
	s.Equal("3:0", h.String())

	h = NewHandle(MaxStoreID, MaxIndex)
	s.Equal(uint32(MaxStoreID), h.Store())
	i, ok = h.Index()
	s.True(ok)
	s.Equal(uint64(MaxIndex), i)
}

func (s *HandleSuite) TestZeroHandle() {
	s.True(ZeroHandle.IsZero())
	_, ok := ZeroHandle.Index()
	s.False(ok)
	s.Equal("<zero>", ZeroHandle.String())
}

func (s *HandleSuite) TestDistinctStores() {
	s.NotEqual(NewHandle(1, 7), NewHandle(2, 7))
	s.NotEqual(NewHandle(1, 7), NewHandle(1, 8))
}

func (s *HandleSuite) TestErrors() {
	err := NewUnknownHandleError(NewHandle(1, 2))
	s.ErrorIs(err, ErrUnknownHandle)
	s.Contains(err.Error(), "1:2")

	var malformed *MalformedInputError
	err = NewMalformedInputError("child %d not interned", 2)
	s.ErrorIs(err, ErrMalformedInput)
	s.True(errors.As(err, &malformed))
	s.Equal("child 2 not interned", malformed.Reason)

	var capacity *CapacityExceededError
	err = error(&CapacityExceededError{Limit: 10})
	s.ErrorIs(err, ErrCapacityExceeded)
	s.True(errors.As(err, &capacity))
	s.Equal(10, capacity.Limit)
}
