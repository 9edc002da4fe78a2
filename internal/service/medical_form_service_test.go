package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wahid-dev1/semina/internal/domain"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

func medicalForm(branchID string) MedicalFormInput {
	return MedicalFormInput{
		BranchID:  branchID,
		Firstname: "Mia",
		Lastname:  "Muster",
		Email:     "Mia@Example.com",
		FieldOfApplication: domain.FieldOfApplication{
			Health: []string{"Chronic pain"},
		},
		Diseases:      []domain.HealthCondition{{Name: "Asthma", Present: true, Note: "mild"}},
		TermsAccepted: true,
		Signature:     "data:image/png;base64,AAAA",
	}
}

func TestSubmitMedicalFormRegistersCustomer(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")

	res, err := h.medical.Submit(context.Background(), medicalForm(branch.ID), testClient)
	require.NoError(t, err)
	require.Equal(t, "mia@example.com", res.Customer.Email)
	require.Equal(t, branch.ID, res.Customer.BranchID)
	require.Equal(t, res.History.ID, *res.Customer.MedicalHistoryID)
	require.Equal(t, res.QRCode.ID, *res.Customer.QRCodeID)

	history, err := h.histories.GetByCustomer(context.Background(), res.Customer.ID)
	require.NoError(t, err)
	require.Len(t, history.Diseases, 1)

	// the issued code logs the new customer in
	login, err := h.auth.LoginWithQR(context.Background(), res.QRCode.Code, testClient)
	require.NoError(t, err)
	require.Equal(t, res.Customer.ID, login.Principal.ID)

	records := h.audits.ByAction(domain.ActionMedicalFormSubmit)
	require.Len(t, records, 1)
	require.Equal(t, res.Customer.ID, *records[0].CustomerID)
	require.NotContains(t, records[0].NewValues, "qrCode")
}

func TestSubmitMedicalFormRejections(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	closed := h.seedBranch(t, "closed")
	closed.Enabled = false
	require.NoError(t, h.branches.Update(context.Background(), closed))

	noTerms := medicalForm(branch.ID)
	noTerms.TermsAccepted = false
	_, err := h.medical.Submit(context.Background(), noTerms, testClient)
	requireCode(t, err, apperrors.CodeValidation)

	_, err = h.medical.Submit(context.Background(), medicalForm(closed.ID), testClient)
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = h.medical.Submit(context.Background(), medicalForm(branch.ID), testClient)
	require.NoError(t, err)
	_, err = h.medical.Submit(context.Background(), medicalForm(branch.ID), testClient)
	requireCode(t, err, apperrors.CodeConflict)
}

func TestMedicalHistoryAndOptions(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	other := h.seedBranch(t, "other")
	other.Enabled = false
	require.NoError(t, h.branches.Update(context.Background(), other))
	manager := h.seedEmployee(t, "m@example.com", domain.RoleManager, branch.ID)
	plain := h.seedCustomer(t, "plain@example.com", branch.ID)

	res, err := h.medical.Submit(context.Background(), medicalForm(branch.ID), testClient)
	require.NoError(t, err)

	history, err := h.medical.GetHistory(context.Background(), actorFor(t, manager), res.Customer.ID)
	require.NoError(t, err)
	require.Equal(t, res.History.ID, history.ID)

	_, err = h.medical.GetHistory(context.Background(), actorFor(t, manager), plain.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	opts, err := h.medical.Options(context.Background())
	require.NoError(t, err)
	require.Len(t, opts.Branches, 1)
	require.Equal(t, branch.ID, opts.Branches[0].ID)
	require.NotEmpty(t, opts.Health)
	require.Contains(t, opts.DrugsAndImplants, "Pacemaker")
}
