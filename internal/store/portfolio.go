package store

import (
	"context"
	"fmt"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/google/uuid"
)

// AddInvestment records a holding. Investments are never shared with a
// group.
func (s *Store) AddInvestment(ctx context.Context, inv domain.Investment) (domain.Investment, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	if inv.Currency == "" {
		inv.Currency = inv.Kind.DefaultCurrency()
	}
	if err := inv.Validate(); err != nil {
		return domain.Investment{}, err
	}
	if err := addItem(ctx, s, investmentsCollection, s.currentWriters().investments, inv); err != nil {
		return domain.Investment{}, err
	}
	return inv, nil
}

func (s *Store) UpdateInvestment(ctx context.Context, id string, fn func(*domain.Investment)) (bool, error) {
	return updateItem(ctx, s, investmentsCollection, s.currentWriters().investments, id, func(inv *domain.Investment) {
		fn(inv)
		inv.UpdatedAt = s.now().UTC()
	}, (*domain.Investment).Validate)
}

func (s *Store) DeleteInvestment(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, s, investmentsCollection, s.currentWriters().investments, id)
}

// AddSavings records a savings product. A linked account that does not
// exist yet is created first, carrying the product's initial balance. In
// solo mode a new installment plan immediately materializes its past
// payments.
func (s *Store) AddSavings(ctx context.Context, sv domain.Savings) (domain.Savings, error) {
	if sv.ID == "" {
		sv.ID = uuid.NewString()
	}
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = s.now().UTC()
	}
	sv.StartDate = domain.DateOf(sv.StartDate)
	sv.EndDate = domain.DateOf(sv.EndDate)
	if err := sv.Validate(); err != nil {
		return domain.Savings{}, err
	}
	if sv.LinkedAccount != "" {
		if err := s.ensureAccount(ctx, sv.LinkedAccount, sv.InitialBalance); err != nil {
			return domain.Savings{}, fmt.Errorf("provisioning linked account: %w", err)
		}
	}
	if err := addItem(ctx, s, savingsCollection, s.currentWriters().savings, sv); err != nil {
		return domain.Savings{}, err
	}
	if sv.Kind == domain.SavingsInstallment {
		s.materializeSavings()
	}
	return sv, nil
}

func (s *Store) UpdateSavings(ctx context.Context, id string, fn func(*domain.Savings)) (bool, error) {
	return updateItem(ctx, s, savingsCollection, s.currentWriters().savings, id, fn, (*domain.Savings).Validate)
}

// DeleteSavings removes the product. Payments it already generated stay in
// the ledger.
func (s *Store) DeleteSavings(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, s, savingsCollection, s.currentWriters().savings, id)
}
