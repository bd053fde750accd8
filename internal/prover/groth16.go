package prover

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"umbra/internal/commitment"
	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

const (
	provingKeyFile   = "note.pk"
	verifyingKeyFile = "note.vk"
)

// Groth16 proves NoteCircuit statements over BN254 in process.
//
// Public signals are, in order: commitment, nullifier and operation tag.
// The commitment is built from the request's salt when one is given, so a
// caller that committed first can bind the proof to its own note.
type Groth16 struct {
	ccs    constraint.ConstraintSystem
	pk     groth16.ProvingKey
	vk     groth16.VerifyingKey
	engine *commitment.Engine
	logger logger.Logger
}

// NewGroth16 compiles the circuit and loads keys from keyDir, running a
// fresh setup (and saving it) when they are missing. An empty keyDir keeps
// the keys in memory only.
func NewGroth16(keyDir string, log logger.Logger) (*Groth16, error) {
	var circuit NoteCircuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("compile note circuit: %w", err)
	}

	var pk groth16.ProvingKey
	var vk groth16.VerifyingKey
	if keyDir == "" {
		pk, vk, err = groth16.Setup(ccs)
	} else {
		pk, vk, err = setupOrLoadKeys(ccs, filepath.Join(keyDir, provingKeyFile), filepath.Join(keyDir, verifyingKeyFile))
	}
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}

	log.Info("Groth16 prover ready", map[string]interface{}{
		"constraints": ccs.GetNbConstraints(),
		"key_dir":     keyDir,
	})

	return &Groth16{
		ccs:    ccs,
		pk:     pk,
		vk:     vk,
		engine: commitment.NewEngine(),
		logger: log,
	}, nil
}

func (g *Groth16) ProveTransfer(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	return g.prove(ctx, req, domain.OperationTransfer)
}

func (g *Groth16) ProveDeposit(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	return g.prove(ctx, req, domain.OperationDeposit)
}

func (g *Groth16) ProveWithdrawal(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	return g.prove(ctx, req, domain.OperationWithdrawal)
}

func (g *Groth16) prove(ctx context.Context, req domain.ProofRequest, op domain.Operation) (domain.ProofResult, error) {
	if err := checkRequest(req, op); err != nil {
		return domain.ProofResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ProofResult{}, failed(op, err)
	}

	note, err := g.noteFor(req)
	if err != nil {
		return domain.ProofResult{}, failed(op, err)
	}
	nullifier := commitment.NullifierOf(note.Commitment)

	asset := commitment.AssetElement(note.Asset)
	salt := commitment.SaltElement(note.Salt)
	assignment := &NoteCircuit{
		Commitment: commitment.ToBigInt(note.Commitment),
		Nullifier:  commitment.ToBigInt(nullifier),
		Operation:  op.Tag(),
		Value:      note.Value,
		Asset:      asset.BigInt(new(big.Int)),
		Salt:       salt.BigInt(new(big.Int)),
	}

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return domain.ProofResult{}, failed(op, fmt.Errorf("witness creation failed: %w", err))
	}

	start := time.Now()
	proof, err := groth16.Prove(g.ccs, g.pk, w)
	if err != nil {
		g.logger.Error("Proof generation failed", map[string]interface{}{
			"operation": string(op),
			"error":     err.Error(),
		})
		return domain.ProofResult{}, failed(op, err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return domain.ProofResult{}, failed(op, fmt.Errorf("proof marshaling failed: %w", err))
	}

	g.logger.Debug("Proof generated", map[string]interface{}{
		"operation":   string(op),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return domain.ProofResult{
		Proof:         base64.StdEncoding.EncodeToString(buf.Bytes()),
		PublicSignals: []string{note.Commitment, nullifier, strconv.Itoa(op.Tag())},
	}, nil
}

func (g *Groth16) noteFor(req domain.ProofRequest) (*commitment.Note, error) {
	if req.Salt == "" {
		return g.engine.Commit(req.Amount, req.AssetMint)
	}
	salt, err := hex.DecodeString(req.Salt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	return commitment.CommitWithSalt(req.Amount, req.AssetMint, salt)
}

// Verify checks a proof produced by this prover against its public signals.
func (g *Groth16) Verify(result domain.ProofResult) error {
	if len(result.PublicSignals) != 3 {
		return errors.New(errors.CodeProofGenerationFailed, "expected 3 public signals")
	}
	raw, err := base64.StdEncoding.DecodeString(result.Proof)
	if err != nil {
		return fmt.Errorf("proof decoding failed: %w", err)
	}
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("proof unmarshaling failed: %w", err)
	}

	tag, err := strconv.Atoi(result.PublicSignals[2])
	if err != nil {
		return fmt.Errorf("operation signal: %w", err)
	}
	public := &NoteCircuit{
		Commitment: commitment.ToBigInt(result.PublicSignals[0]),
		Nullifier:  commitment.ToBigInt(result.PublicSignals[1]),
		Operation:  tag,
	}
	w, err := frontend.NewWitness(public, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness creation failed: %w", err)
	}
	if err := groth16.Verify(proof, g.vk, w); err != nil {
		return fmt.Errorf("proof verification failed: %w", err)
	}
	return nil
}

func saveKey(path string, key interface {
	WriteTo(w io.Writer) (int64, error)
}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = key.WriteTo(f)
	return err
}

func loadProvingKey(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BN254)
	_, err = pk.ReadFrom(f)
	return pk, err
}

func loadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BN254)
	_, err = vk.ReadFrom(f)
	return vk, err
}

// setupOrLoadKeys loads both keys when present, otherwise runs setup and
// writes them.
func setupOrLoadKeys(ccs constraint.ConstraintSystem, pkPath, vkPath string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk, pkErr := loadProvingKey(pkPath)
	vk, vkErr := loadVerifyingKey(vkPath)
	if pkErr == nil && vkErr == nil {
		return pk, vk, nil
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(pkPath), 0o700); err != nil {
		return nil, nil, err
	}
	if err := saveKey(pkPath, pk); err != nil {
		return nil, nil, err
	}
	if err := saveKey(vkPath, vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}
