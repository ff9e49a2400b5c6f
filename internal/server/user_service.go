package server

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-forge/internal/billing"
	"github.com/jonathan/resume-forge/internal/server/middleware"
	"github.com/jonathan/resume-forge/internal/types"
)

// UserStore is the subset of the store the user service needs.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*types.User, error)
	FindOrCreateUser(ctx context.Context, user *types.User) (*types.User, bool, error)
}

// UserService resolves the authenticated caller to a stored user record.
type UserService struct {
	store     UserStore
	customers billing.CustomerCreator
	logger    logrus.FieldLogger
}

// NewUserService creates a new UserService. A nil customers uses billing.NoopCustomers.
func NewUserService(store UserStore, customers billing.CustomerCreator, logger logrus.FieldLogger) *UserService {
	if customers == nil {
		customers = billing.NoopCustomers{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserService{store: store, customers: customers, logger: logger}
}

// Me returns the caller's user record, creating it on first sight. A payment customer is
// created before the record so a stored user always has one when billing is configured.
func (s *UserService) Me(ctx context.Context, identity middleware.Identity) (*types.User, error) {
	user, err := s.store.GetUser(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	customerID, err := s.customers.CreateCustomer(ctx, identity.Email, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment customer: %w", err)
	}

	stored, created, err := s.store.FindOrCreateUser(ctx, &types.User{
		ID:               identity.UserID,
		Email:            identity.Email,
		StripeCustomerID: customerID,
		PlanKey:          types.PlanFree,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if created {
		s.logger.WithField("user_id", identity.UserID).Info("user created")
	} else if customerID != "" && stored.StripeCustomerID != customerID {
		// a concurrent request created the user first; our customer is unused
		s.logger.WithFields(logrus.Fields{
			"user_id":     identity.UserID,
			"customer_id": customerID,
		}).Warn("discarding duplicate payment customer")
	}

	return stored, nil
}
