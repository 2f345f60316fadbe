package generators

import (
	"encoding/binary"
	"math/rand"

	"github.com/google/uuid"

	"github.com/mmrzaf/datalchemy/internal/domain"
)

type UUIDv4Generator struct {
	id string
}

func (g *UUIDv4Generator) ID() string { return g.id }

func (g *UUIDv4Generator) Params() []ParamSpec { return nil }

func (g *UUIDv4Generator) Generate(_ *GeneratorContext, _ Params, rng *rand.Rand) (domain.Value, error) {
	return RandomUUID(rng), nil
}

// RandomUUID builds a version 4 uuid from rng bytes, so it replays with the seed.
func RandomUUID(rng *rand.Rand) domain.Value {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], rng.Uint64())
	binary.BigEndian.PutUint64(b[8:], rng.Uint64())
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return domain.UUIDValue(uuid.UUID(b).String())
}

func (g *UUIDv4Generator) GenerateUnique(_ *GeneratorContext, _ Params, index int64) (domain.Value, error) {
	return UniqueUUID(index), nil
}

// UniqueUUID maps index to the uuid whose 128-bit integer value is index+1.
func UniqueUUID(index int64) domain.Value {
	var b [16]byte
	binary.BigEndian.PutUint64(b[8:], uint64(index)+1)
	return domain.UUIDValue(uuid.UUID(b).String())
}
