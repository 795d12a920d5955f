package state

import (
	"log"

	"github.com/aivahq/aiva-backend/internal/cache"
	"github.com/aivahq/aiva-backend/internal/models"
)

// SessionStore mirrors the most recent signed-in account so a restarted
// process can report who was active. Wire HandleAuthChange into the auth
// service's change callbacks.
type SessionStore struct {
	cache *cache.Cache
}

func NewSessionStore(c *cache.Cache) *SessionStore {
	return &SessionStore{cache: c}
}

func (s *SessionStore) HandleAuthChange(account *models.Account) {
	if account == nil {
		if err := s.cache.Delete(cache.KeyCurrentUser); err != nil {
			log.Printf("[State][Session] clear failed err=%v", err)
		}
		return
	}
	if err := s.cache.SetJSON(cache.KeyCurrentUser, account); err != nil {
		log.Printf("[State][Session] snapshot failed user=%s err=%v", account.ID, err)
	}
}

// Current returns the last signed-in account, if any.
func (s *SessionStore) Current() (*models.Account, bool) {
	var account models.Account
	ok, err := s.cache.GetJSON(cache.KeyCurrentUser, &account)
	if err != nil || !ok {
		return nil, false
	}
	return &account, true
}
