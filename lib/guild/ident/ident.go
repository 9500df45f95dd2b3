package ident

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Issuer hands out identifiers that are never reused for the life of the process. Next is safe
// for concurrent use.
type Issuer interface {
	Next() string
}

// UUID issues time ordered version 7 uuids, so identifiers sort in issuance order.
type UUID struct{}

func (UUID) Next() string {
	id, err := uuid.NewV7()
	if err != nil {
		// only fails if the random source fails
		return uuid.NewString()
	}
	return id.String()
}

// Sequence issues Prefix followed by a zero padded counter.
type Sequence struct {
	Prefix string

	n atomic.Uint64
}

func (T *Sequence) Next() string {
	return fmt.Sprintf("%s%012d", T.Prefix, T.n.Add(1))
}

var (
	_ Issuer = UUID{}
	_ Issuer = (*Sequence)(nil)
)
