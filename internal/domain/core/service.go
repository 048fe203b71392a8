package core

import (
	"context"
	"time"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListEmployees(ctx context.Context, tenantID string, limit, offset int) ([]Employee, error) {
	return s.store.ListEmployees(ctx, tenantID, limit, offset)
}

func (s *Service) CountEmployees(ctx context.Context, tenantID string) (int, error) {
	return s.store.CountEmployees(ctx, tenantID)
}

func (s *Service) GetEmployee(ctx context.Context, tenantID, employeeID string) (*Employee, error) {
	return s.store.GetEmployee(ctx, tenantID, employeeID)
}

func (s *Service) CreateEmployee(ctx context.Context, tenantID string, emp Employee) (string, error) {
	if emp.Status == "" {
		emp.Status = EmployeeStatusActive
	}
	return s.store.CreateEmployee(ctx, tenantID, emp)
}

func (s *Service) UpdateEmployee(ctx context.Context, tenantID, employeeID string, emp Employee) error {
	return s.store.UpdateEmployee(ctx, tenantID, employeeID, emp)
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, tenantID, userID)
}

func (s *Service) ListContracts(ctx context.Context, tenantID, employeeID string) ([]Contract, error) {
	return s.store.ListContracts(ctx, tenantID, employeeID)
}

func (s *Service) GetContract(ctx context.Context, tenantID, contractID string) (*Contract, error) {
	return s.store.GetContract(ctx, tenantID, contractID)
}

func (s *Service) CreateContract(ctx context.Context, tenantID string, contract Contract) (string, error) {
	if contract.Status == "" {
		contract.Status = ContractStatusDraft
	}
	return s.store.CreateContract(ctx, tenantID, contract)
}

func (s *Service) SignContract(ctx context.Context, tenantID, contractID string) error {
	return s.store.SignContract(ctx, tenantID, contractID, time.Now())
}

func (s *Service) TerminateContract(ctx context.Context, tenantID, contractID string, endDate time.Time) error {
	return s.store.TerminateContract(ctx, tenantID, contractID, endDate)
}

func (s *Service) ContractIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	return s.store.ContractIDByUserID(ctx, tenantID, userID)
}

func (s *Service) ListTeams(ctx context.Context, tenantID string) ([]Team, error) {
	return s.store.ListTeams(ctx, tenantID)
}

func (s *Service) CreateTeam(ctx context.Context, tenantID, name string) (string, error) {
	return s.store.CreateTeam(ctx, tenantID, name)
}

func (s *Service) ListTeamMembers(ctx context.Context, tenantID, teamID string) ([]TeamMember, error) {
	return s.store.ListTeamMembers(ctx, tenantID, teamID)
}

func (s *Service) UpsertTeamMember(ctx context.Context, teamID, contractID string, isManager bool) error {
	return s.store.UpsertTeamMember(ctx, teamID, contractID, isManager)
}

func (s *Service) RemoveTeamMember(ctx context.Context, teamID, contractID string) error {
	return s.store.RemoveTeamMember(ctx, teamID, contractID)
}

func (s *Service) IsManagerOfContract(ctx context.Context, tenantID, managerContractID, contractID string) (bool, error) {
	return s.store.IsManagerOfContract(ctx, tenantID, managerContractID, contractID)
}
