package prover

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"umbra/internal/commitment"
)

// NoteCircuit proves knowledge of the opening of a public commitment, that
// the public nullifier was derived from it and that the value is a positive
// 64 bit integer.
type NoteCircuit struct {
	// Public inputs
	Commitment frontend.Variable `gnark:",public"`
	Nullifier  frontend.Variable `gnark:",public"`
	Operation  frontend.Variable `gnark:",public"`

	// Private inputs
	Value frontend.Variable
	Asset frontend.Variable
	Salt  frontend.Variable
}

func (c *NoteCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	// cm = MiMC(value, asset, salt)
	hasher.Write(c.Value, c.Asset, c.Salt)
	api.AssertIsEqual(c.Commitment, hasher.Sum())

	// nf = MiMC(tag, cm)
	tag := commitment.NullifierTag()
	hasher.Reset()
	hasher.Write(tag.BigInt(new(big.Int)), c.Commitment)
	api.AssertIsEqual(c.Nullifier, hasher.Sum())

	api.ToBinary(c.Value, commitment.MaxValueBits)
	api.AssertIsDifferent(c.Value, 0)

	// operation tags are 0, 1 and 2
	api.AssertIsLessOrEqual(c.Operation, 2)

	return nil
}
