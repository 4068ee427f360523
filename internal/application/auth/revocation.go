package auth

import (
	"sync"
	"time"
)

// Revocations lista de tokens (jti) revocados por logout hasta su expiración.
type Revocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewRevocations crea la lista vacía.
func NewRevocations() *Revocations {
	return &Revocations{revoked: map[string]time.Time{}, now: time.Now}
}

// Revoke marca jti como revocado hasta exp y purga los vencidos.
func (r *Revocations) Revoke(jti string, exp time.Time) {
	if jti == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, until := range r.revoked {
		if !until.After(now) {
			delete(r.revoked, id)
		}
	}
	r.revoked[jti] = exp
}

// IsRevoked informa si jti fue revocado y aún no expiró.
func (r *Revocations) IsRevoked(jti string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[jti]
	return ok && until.After(r.now())
}
