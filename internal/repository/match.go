package repository

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/entity"
)

type MatchRegistry interface {
	Create(userA, userB string, size int) (*entity.Match, error)
	Find(user string) (*entity.Match, error)
	Remove(match *entity.Match)
	Len() int
}

// memMatches keeps every active match under the case-folded key of both participants.
type memMatches struct {
	mu      sync.RWMutex
	matches map[string]*entity.Match
}

func NewMatchRegistry() MatchRegistry {
	return &memMatches{
		matches: make(map[string]*entity.Match),
	}
}

func (that *memMatches) Create(userA, userB string, size int) (*entity.Match, error) {
	keyA, keyB := userKey(userA), userKey(userB)
	if keyA == keyB {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSelfPlay, userA)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for _, key := range []string{keyA, keyB} {
		if _, ok := that.matches[key]; ok {
			return nil, fmt.Errorf("%w: %s", apperror.ErrAlreadyInMatch, key)
		}
	}

	match, err := entity.NewMatch(userA, userB, size)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	that.matches[keyA] = match
	that.matches[keyB] = match

	return match, nil
}

func (that *memMatches) Find(user string) (*entity.Match, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	match, ok := that.matches[userKey(user)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNoActiveMatch, user)
	}

	return match, nil
}

// Remove deletes both participant keys if they still point at match.
func (that *memMatches) Remove(match *entity.Match) {
	if match == nil {
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for _, key := range []string{userKey(match.UserA), userKey(match.UserB)} {
		if that.matches[key] == match {
			delete(that.matches, key)
		}
	}
}

// Len returns the number of active matches.
func (that *memMatches) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.matches) / 2
}

func userKey(user string) string {
	return entity.UserKey(user)
}
