package verification

import "github.com/kusina-api/internal/domain"

// Stores groups the four independent per-flow stores.
type Stores struct {
	Signup *Store[domain.SignupData]
	Login  *Store[domain.LoginIdentity]
	Reset  *Store[domain.PasswordTarget]
	Change *Store[domain.PasswordTarget]
}

// NewStores builds the four stores sharing the same options.
func NewStores(opts ...Option) *Stores {
	return &Stores{
		Signup: NewStore[domain.SignupData]("signup", opts...),
		Login:  NewStore[domain.LoginIdentity]("login", opts...),
		Reset:  NewStore[domain.PasswordTarget]("reset", opts...),
		Change: NewStore[domain.PasswordTarget]("change", opts...),
	}
}

// Sweepables lists the stores for the background sweeper.
func (s *Stores) Sweepables() []Sweepable {
	return []Sweepable{s.Signup, s.Login, s.Reset, s.Change}
}
