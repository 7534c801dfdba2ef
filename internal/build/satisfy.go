package build

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"logicmake/internal/engine"
	"logicmake/internal/logging"
	"logicmake/internal/term"
)

// UnsatisfiedError reports that every candidate proof of a target either
// failed its build actions or left its test unsatisfied. LastErr carries
// the failure of the final attempt, nil when no proof existed at all.
type UnsatisfiedError struct {
	Target   term.Term
	Attempts int
	LastErr  error
}

func (e *UnsatisfiedError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("build: no proof for target %s", e.Target)
	}
	return fmt.Sprintf("build: target %s unsatisfied after %d candidate proofs: %v",
		e.Target, e.Attempts, e.LastErr)
}

func (e *UnsatisfiedError) Unwrap() error { return e.LastErr }

// Satisfier executes proofs. Resolution finds the candidate derivations;
// Satisfy walks each one dependency first, running build actions for any
// rule whose test does not already hold, and accepts the first derivation
// whose every rule ends up satisfied. A failed action abandons only the
// current derivation; the search backtracks to the next one.
type Satisfier struct {
	eng *engine.Engine
	log *zap.Logger
}

// NewSatisfier wires a satisfier over an engine.
func NewSatisfier(e *engine.Engine) *Satisfier {
	return &Satisfier{eng: e, log: logging.Get(logging.CategoryBuild)}
}

// Satisfy brings a target up to date and returns the proof that did it.
func (s *Satisfier) Satisfy(ctx context.Context, target term.Term) (*engine.Proof, error) {
	proofs := s.eng.Resolve(target)
	attempts := 0
	var lastErr error
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		proof, ok := proofs.Next()
		if !ok {
			if err := proofs.Err(); err != nil {
				return nil, err
			}
			return nil, &UnsatisfiedError{Target: target, Attempts: attempts, LastErr: lastErr}
		}
		attempts++
		s.log.Debug("trying proof",
			zap.Stringer("target", target),
			zap.Int("attempt", attempts),
			zap.Int("rules", len(proof.Rules)))
		if err := s.execute(ctx, proof); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.log.Info("proof failed, backtracking",
				zap.Stringer("target", target),
				zap.Int("attempt", attempts),
				zap.Error(err))
			lastErr = err
			continue
		}
		s.log.Info("target satisfied",
			zap.Stringer("target", target),
			zap.Int("attempt", attempts))
		return proof, nil
	}
}

// execute runs one candidate proof. Rules are visited in reverse proof
// order, which places every rule after the rules proving its antecedents,
// so dependencies are built before their dependents. Each rule follows
// the test, commands, test-again contract: an already satisfied rule is
// skipped, otherwise its actions run and must leave the test passing.
func (s *Satisfier) execute(ctx context.Context, proof *engine.Proof) error {
	for i := len(proof.Rules) - 1; i >= 0; i-- {
		r := proof.Rules[i]
		if r.Test(proof.Bindings) {
			continue
		}
		goal := term.Substitute(r.Consequent(), proof.Bindings)
		if !r.HasCommands() {
			return fmt.Errorf("build: %s is not satisfied and has no actions", goal)
		}
		s.log.Info("building", zap.Stringer("goal", goal))
		if err := r.Commands(ctx, proof.Bindings); err != nil {
			return err
		}
		if !r.Test(proof.Bindings) {
			return fmt.Errorf("build: actions for %s completed but left it unsatisfied", goal)
		}
	}
	return nil
}
