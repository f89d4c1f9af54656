package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmcervs/donatec/internal/apperror"
	"github.com/dmcervs/donatec/internal/model"
)

const adminEmail = "admin@cua.uam.mx"

func newDonationFixture(t *testing.T) (*DonationService, *mockDonationRepo) {
	t.Helper()
	repo := newMockDonationRepo()
	return NewDonationService(repo, adminEmail, testLogger(t)), repo
}

func validInput() DonationInput {
	return DonationInput{
		Title:       "Escritorio de madera",
		Description: "Escritorio en buen estado, una gaveta no cierra.",
		Category:    "Muebles",
		Images:      []string{"data:image/png;base64,AAA="},
	}
}

func TestDonationCreate(t *testing.T) {
	svc, _ := newDonationFixture(t)

	d, err := svc.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "user-1", d.UserID)
	assert.Equal(t, model.DonationActive, d.State)
}

func TestDonationCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DonationInput)
		field  string
	}{
		{"empty title", func(in *DonationInput) { in.Title = "   " }, "nombre"},
		{"title too long", func(in *DonationInput) { in.Title = strings.Repeat("a", MaxDonationTitleLength+1) }, "nombre"},
		{"empty description", func(in *DonationInput) { in.Description = "" }, "descripcion"},
		{"description too long", func(in *DonationInput) { in.Description = strings.Repeat("b", MaxDonationDescriptionLength+1) }, "descripcion"},
		{"empty category", func(in *DonationInput) { in.Category = "" }, "categoria"},
		{"too many images", func(in *DonationInput) {
			in.Images = []string{"a", "b", "c", "d"}
		}, "imagen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newDonationFixture(t)
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), "user-1", in)
			require.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Empty(t, repo.donations, "nothing should be persisted on validation failure")
		})
	}
}

func TestDonationListActive_ExcludesInactive(t *testing.T) {
	svc, _ := newDonationFixture(t)
	ctx := context.Background()

	active, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)

	in := validInput()
	in.Title = "Silla gamer"
	paused, err := svc.Create(ctx, "user-1", in)
	require.NoError(t, err)
	_, err = svc.SetState(ctx, "user-1", paused.ID, model.DonationInactive)
	require.NoError(t, err)

	list, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	// The owner still sees both.
	mine, err := svc.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDonationUpdate_OnlyOwner(t *testing.T) {
	svc, _ := newDonationFixture(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)

	in := validInput()
	in.Title = "Escritorio (reservado)"

	_, err = svc.Update(ctx, "user-2", d.ID, in)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := svc.Update(ctx, "user-1", d.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Escritorio (reservado)", updated.Title)
}

func TestDonationSetState(t *testing.T) {
	svc, _ := newDonationFixture(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)

	_, err = svc.SetState(ctx, "user-1", d.ID, "Pausado")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.SetState(ctx, "user-2", d.ID, model.DonationInactive)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := svc.SetState(ctx, "user-1", d.ID, model.DonationInactive)
	require.NoError(t, err)
	assert.Equal(t, model.DonationInactive, updated.State)
}

func TestDonationMutation_OwnerlessIsImmutable(t *testing.T) {
	svc, repo := newDonationFixture(t)
	ctx := context.Background()

	orphan := &model.Donation{
		Title:       "Donación sin dueño",
		Description: "Registro histórico sin responsable.",
		Category:    "Otros",
	}
	require.NoError(t, repo.Create(ctx, orphan))

	_, err := svc.Update(ctx, "user-1", orphan.ID, validInput())
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	err = svc.Delete(ctx, "user-1", orphan.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestDonationDelete(t *testing.T) {
	svc, repo := newDonationFixture(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, "user-2", d.ID), apperror.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, "user-1", d.ID))
	assert.Empty(t, repo.donations)

	assert.ErrorIs(t, svc.Delete(ctx, "user-1", d.ID), apperror.ErrNotFound)
}

func TestDonationDeleteAll_AdminOnly(t *testing.T) {
	svc, _ := newDonationFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)

	_, err = svc.DeleteAll(ctx, "user@cua.uam.mx")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	n, err := svc.DeleteAll(ctx, adminEmail)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDonationDeleteAll_DisabledWithoutAdmin(t *testing.T) {
	repo := newMockDonationRepo()
	svc := NewDonationService(repo, "", testLogger(t))

	_, err := svc.DeleteAll(context.Background(), "cualquiera@cua.uam.mx")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
