package session

import (
	"math/big"

	"github.com/google/uuid"
	"github.com/osvaldoandrade/pitchflow/pkg/domain"
)

// IDLength is the number of base36 characters in a generated session id.
const IDLength = 13

type Generator interface {
	Generate() domain.SessionID
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func() domain.SessionID

func (f GeneratorFunc) Generate() domain.SessionID { return f() }

type randomGenerator struct{}

// NewGenerator returns a Generator producing short random base36 tokens.
// Tokens are only expected to be locally unique.
func NewGenerator() Generator { return randomGenerator{} }

func (randomGenerator) Generate() domain.SessionID {
	id := uuid.New()
	s := new(big.Int).SetBytes(id[:]).Text(36)
	if len(s) > IDLength {
		s = s[:IDLength]
	}
	return domain.SessionID(s)
}
