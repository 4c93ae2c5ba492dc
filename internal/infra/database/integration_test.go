package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

// openTestDB precisa de TEST_DATABASE_URL apontando para um banco descartável.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL não definido")
	}

	ctx := context.Background()
	db, err := NewDBConnection(ctx, url, PoolConfig{MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = NewMigrator(db).Up(ctx)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `TRUNCATE leads, clinics, medical_specialties, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

type fixture struct {
	lima, callao *entity.Clinic
	ortho        *entity.MedicalSpecialty
}

func seedFixture(t *testing.T, db *sql.DB) fixture {
	t.Helper()
	ctx := context.Background()
	clinics := NewClinicRepository(db)
	specialties := NewMedicalSpecialtyRepository(db)
	leads := NewLeadRepository(db)

	f := fixture{
		lima:   &entity.Clinic{Name: "Lima", Address: "Av. Arequipa 123", Active: true},
		callao: &entity.Clinic{Name: "Callao", Active: true},
		ortho:  &entity.MedicalSpecialty{Name: "Ortodoncia", Category: "Odontologia", Active: true},
	}
	require.NoError(t, clinics.Create(ctx, f.lima))
	require.NoError(t, clinics.Create(ctx, f.callao))
	require.NoError(t, specialties.Create(ctx, f.ortho))

	rows := []struct {
		name   string
		dni    string
		clinic *entity.Clinic
		status entity.LeadStatus
		origin string
		cost   string
	}{
		{"Ana", "10000001", f.lima, entity.LeadStatusNuevo, entity.OriginWeb, "1500.00"},
		{"Bruno", "10000002", f.lima, entity.LeadStatusAprobado, entity.OriginWeb, "2500.50"},
		{"Carla", "10000003", f.callao, entity.LeadStatusNuevo, entity.OriginSquarespace, "0"},
		{"Diego", "10000004", f.callao, entity.LeadStatusRechazado, entity.OriginWeb, "900.00"},
		{"Elena", "10000005", f.lima, entity.LeadStatusNuevo, entity.OriginSquarespace, "3200.00"},
		{"Fabio", "10000006", f.lima, entity.LeadStatusContactado, entity.OriginWeb, "800.00"},
	}
	for _, r := range rows {
		l := entity.NewLead(r.clinic, f.ortho, r.origin)
		l.ReceptionistName = "Recepción"
		l.ClientName = r.name
		l.DNI = r.dni
		l.Status = r.status
		l.MonthlyIncome = decimal.RequireFromString("3000")
		l.TreatmentCost = decimal.RequireFromString(r.cost)
		l.Phone = "987654321"
		require.NoError(t, leads.Create(ctx, l))
	}
	return f
}

func TestLeadRepositoryFilteringAndPaging(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	repo := NewLeadRepository(db)
	ctx := context.Background()

	status := entity.LeadStatusNuevo
	leads, total, err := repo.List(ctx, entity.LeadFilter{Status: &status, ClinicID: &f.lima.ID},
		entity.PageRequest{Page: 0, Size: 1, SortField: "clientName", SortDir: entity.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, leads, 1)
	assert.Equal(t, "Ana", leads[0].ClientName)
	assert.Equal(t, "Lima", leads[0].ClinicName)
	assert.Equal(t, "Ortodoncia", leads[0].MedicalSpecialtyName)

	leads, _, err = repo.List(ctx, entity.LeadFilter{}, entity.PageRequest{Page: 0, Size: 10, SortField: "treatmentCost", SortDir: entity.SortDesc})
	require.NoError(t, err)
	require.Len(t, leads, 6)
	assert.Equal(t, "Elena", leads[0].ClientName)

	future := time.Now().Add(time.Hour)
	all, err := repo.ListAll(ctx, entity.LeadFilter{StartDate: &future})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLeadRepositoryUpdateAndDNIChecks(t *testing.T) {
	db := openTestDB(t)
	seedFixture(t, db)
	repo := NewLeadRepository(db)
	ctx := context.Background()

	lead, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	before := lead.UpdatedAt

	lead.Status = entity.LeadStatusContactado
	lead.Observation = "llamado"
	require.NoError(t, repo.Update(ctx, lead))

	reloaded, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.LeadStatusContactado, reloaded.Status)
	assert.Equal(t, "llamado", reloaded.Observation)
	assert.False(t, reloaded.UpdatedAt.Before(before))

	exists, err := repo.ExistsByDNI(ctx, "10000002")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByDNIExcludingID(ctx, "10000001", 1)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestLeadRepositoryStats(t *testing.T) {
	db := openTestDB(t)
	seedFixture(t, db)

	stats, err := NewLeadRepository(db).Stats(context.Background(), time.Now().Add(-time.Hour))

	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.TotalLeads)
	assert.Equal(t, int64(6), stats.TodaysLeads)
	assert.Equal(t, int64(3), stats.ByStatus[entity.LeadStatusNuevo])
	assert.Equal(t, int64(0), stats.ByStatus[entity.LeadStatusDesembolsado])
	assert.Equal(t, int64(2), stats.ByOrigin[entity.OriginSquarespace])
}

func TestTxManagerRollsBack(t *testing.T) {
	db := openTestDB(t)
	tx := NewTxManager(db)
	clinics := NewClinicRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, clinics.Create(ctx, &entity.Clinic{Name: "Temporal", Active: true}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := clinics.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestReferenceImporterSkipsExistingNames(t *testing.T) {
	db := openTestDB(t)
	clinics := NewClinicRepository(db)
	specialties := NewMedicalSpecialtyRepository(db)
	importer := NewReferenceImporter(NewTxManager(db), clinics, specialties)
	ctx := context.Background()

	c, s, err := importer.ImportReferenceData(ctx,
		[]*entity.Clinic{{Name: "Lima", Active: true}, {Name: "Callao", Active: true}},
		[]*entity.MedicalSpecialty{{Name: "Ortodoncia", Active: true}})
	require.NoError(t, err)
	assert.Equal(t, 2, c)
	assert.Equal(t, 1, s)

	c, s, err = importer.ImportReferenceData(ctx,
		[]*entity.Clinic{{Name: "LIMA", Active: true}},
		[]*entity.MedicalSpecialty{{Name: "ortodoncia", Active: true}})
	require.NoError(t, err)
	assert.Zero(t, c)
	assert.Zero(t, s)

	found, err := clinics.FindByNameIgnoreCase(ctx, "callao")
	require.NoError(t, err)
	assert.Equal(t, "Callao", found.Name)
}

func TestClinicFindByNamePrefersActive(t *testing.T) {
	db := openTestDB(t)
	clinics := NewClinicRepository(db)
	ctx := context.Background()

	old := &entity.Clinic{Name: "Lima", Active: false}
	require.NoError(t, clinics.Create(ctx, old))
	current := &entity.Clinic{Name: "LIMA", Active: true}
	require.NoError(t, clinics.Create(ctx, current))

	found, err := clinics.FindByNameIgnoreCase(ctx, "lima")

	require.NoError(t, err)
	assert.Equal(t, current.ID, found.ID)
	assert.True(t, found.Active)
}

func TestUserRepositoryUniqueConstraints(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &entity.User{Username: "admin", Email: "admin@kiwipay.pe", PasswordHash: "h", Role: entity.RoleAdmin, Enabled: true}))

	err := users.Create(ctx, &entity.User{Username: "admin", Email: "otro@kiwipay.pe", PasswordHash: "h", Role: entity.RoleUser, Enabled: true})
	assert.ErrorIs(t, err, entity.ErrUsernameTaken)

	err = users.Create(ctx, &entity.User{Username: "otro", Email: "admin@kiwipay.pe", PasswordHash: "h", Role: entity.RoleUser, Enabled: true})
	assert.ErrorIs(t, err, entity.ErrEmailTaken)

	u, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)
}
