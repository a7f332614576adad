package tokens

import (
	"fmt"
	"time"
)

// Maker issues and checks name tokens.
type Maker interface {
	CreateToken(username string, duration time.Duration) (string, *Payload, error)
	VerifyToken(token string) (*Payload, error)
}

const (
	KindPaseto = "paseto"
	KindJWT    = "jwt"
)

// NewMaker returns the Maker for kind ("paseto" or "jwt").
func NewMaker(kind, secret string) (Maker, error) {
	switch kind {
	case KindPaseto:
		return NewPasetoMaker(secret)
	case KindJWT:
		return NewJWTMaker(secret)
	default:
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}
}
