package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

// provisionStep is one dependent write executed after the identity exists.
// Steps return an explicit error result; there is no panic-based unwinding,
// so the compensation path below is a visible branch.
type provisionStep struct {
	name string
	run  func(ctx context.Context) error
}

// provision runs the account-provisioning workflow: create the identity,
// then execute the dependent steps in order. Steps are built from the created
// identity because its id is the foreign key for every dependent write. On
// the first failing step the identity is deleted and the step's ORIGINAL
// error is returned; a failed delete is logged and never replaces that error.
// Partial dependent rows may remain behind, which is acceptable: the identity
// id is the join key and a retried signup allocates a fresh one. The identity
// itself is what must not leak.
func (s *Service) provision(ctx context.Context, params ports.CreateIdentityParams, buildSteps func(identity domain.Identity) []provisionStep) (domain.Identity, error) {
	identity, err := s.identities.Create(ctx, params)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("create identity: %w", err)
	}

	for _, step := range buildSteps(identity) {
		if stepErr := step.run(ctx); stepErr != nil {
			s.compensateIdentity(ctx, identity.ID, step.name, stepErr)
			return domain.Identity{}, stepErr
		}
	}
	return identity, nil
}

// compensateIdentity performs the best-effort rollback delete. This is not
// two-phase commit: when the delete itself fails an unconfirmed identity can
// remain, and the only record of that is the log line.
func (s *Service) compensateIdentity(ctx context.Context, identityID uuid.UUID, failedStep string, cause error) {
	if err := s.identities.Delete(ctx, identityID); err != nil {
		s.logger.ErrorContext(ctx, "identity compensation failed",
			"operation", "provision_compensate",
			"outcome", "failure",
			"identity_id", identityID.String(),
			"failed_step", failedStep,
			"step_error", cause.Error(),
			"delete_error", err.Error(),
		)
		return
	}
	s.logger.WarnContext(ctx, "identity compensated after step failure",
		"operation", "provision_compensate",
		"outcome", "success",
		"identity_id", identityID.String(),
		"failed_step", failedStep,
		"step_error", cause.Error(),
	)
}
