package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wahid-dev1/semina/internal/config"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
)

func bootstrapConfig() config.BootstrapConfig {
	return config.BootstrapConfig{
		CompanyEnabled:       true,
		CompanyName:          "Acme Wellness",
		CompanyContactPerson: "Jo",
		CompanyEmail:         "jo@acme.example",
		CompanyActive:        true,
		AdminEmail:           "Root@Acme.example",
		AdminPassword:        "initial-secret",
		AdminUsername:        "root",
		AdminFirstname:       "Super",
		AdminLastname:        "Admin",
		AdminPin:             "12x4",
	}
}

func TestBootstrapSeedsOnce(t *testing.T) {
	h := newHarness(t)
	b := NewBootstrapper(bootstrapConfig(), BootstrapDependencies{
		CompanyRepo:  h.companies,
		BranchRepo:   h.branches,
		EmployeeRepo: h.employees,
		Hasher:       h.hasher,
	})

	b.Run(context.Background())
	b.Run(context.Background())

	companies, err := h.companies.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	require.Equal(t, "Acme Wellness", companies[0].Name)

	admins, err := h.employees.List(context.Background(), repository.EmployeeFilter{})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	admin := admins[0]
	require.True(t, admin.Scope.IsSenior())
	require.Equal(t, "root@acme.example", admin.Email)
	require.Equal(t, defaultPin, admin.PersonalPin)
	require.Equal(t, defaultLanguage, admin.Language)

	res, err := h.auth.Login(context.Background(), "root@acme.example", "initial-secret", testClient)
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuperAdmin, res.Principal.Role)
}

func TestBootstrapSkipsWithoutCredentials(t *testing.T) {
	h := newHarness(t)
	cfg := bootstrapConfig()
	cfg.CompanyEnabled = false
	cfg.AdminPassword = ""
	b := NewBootstrapper(cfg, BootstrapDependencies{
		CompanyRepo:  h.companies,
		BranchRepo:   h.branches,
		EmployeeRepo: h.employees,
	})

	b.Run(context.Background())

	companies, err := h.companies.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Empty(t, companies)
	admins, err := h.employees.List(context.Background(), repository.EmployeeFilter{})
	require.NoError(t, err)
	require.Empty(t, admins)
}

func TestBootstrapKeepsExistingSuperAdmin(t *testing.T) {
	h := newHarness(t)
	existing := h.seedEmployee(t, "first@example.com", domain.RoleSuperAdmin, "")
	b := NewBootstrapper(bootstrapConfig(), BootstrapDependencies{
		CompanyRepo:  h.companies,
		BranchRepo:   h.branches,
		EmployeeRepo: h.employees,
		Hasher:       h.hasher,
	})

	b.Run(context.Background())

	admins, err := h.employees.List(context.Background(), repository.EmployeeFilter{})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	require.Equal(t, existing.ID, admins[0].ID)
}
