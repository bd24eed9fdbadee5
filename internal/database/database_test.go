package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skportal-backend/internal/models"
)

func openTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, Open(Config{Path: filepath.Join(t.TempDir(), "test.db")}))
	t.Cleanup(func() { Close() })
}

func TestNotConfigured(t *testing.T) {
	require.ErrorIs(t, Open(Config{}), ErrNotConfigured)

	_, err := NewAnnouncementRepo().List()
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewAdminRepo().GetByUsername("admin")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	openTestDB(t)
	require.NoError(t, migrate())

	var count int
	require.NoError(t, DB.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	require.Equal(t, len(migrations), count)
}

func TestReadOnlyPoolRejectsWrites(t *testing.T) {
	openTestDB(t)

	_, err := ReadDB.Exec("DELETE FROM settings")
	require.Error(t, err)

	// Reads through the public pool see committed writes
	require.NoError(t, NewAnnouncementRepo().Create(&models.Announcement{
		ID: "a1", Title: "t", Description: "d", Category: models.AnnouncementGeneral, Date: "2024-03-15",
	}))
	list, err := NewPublicAnnouncementRepo().List()
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = NewPublicAnnouncementRepo().Delete("a1")
	require.Error(t, err)
}

func TestAdminRepo(t *testing.T) {
	openTestDB(t)
	repo := NewAdminRepo()

	admin := &models.AdminAccount{Username: "Admin", PasswordHash: "hash", Email: "sk@example.ph", IsActive: true}
	require.NoError(t, repo.Create(admin))
	require.NotZero(t, admin.ID)

	err := repo.Create(&models.AdminAccount{Username: "Admin", PasswordHash: "hash2", IsActive: true})
	require.ErrorIs(t, err, ErrUsernameTaken)

	// Usernames are case-sensitive as stored
	_, err = repo.GetByUsername("admin")
	require.ErrorIs(t, err, ErrAdminNotFound)

	got, err := repo.GetByUsername("Admin")
	require.NoError(t, err)
	require.Equal(t, "sk@example.ph", got.Email)
	require.Empty(t, got.FullName)
	require.True(t, got.IsActive)
	require.Nil(t, got.LastLogin)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(admin.ID, at))
	require.NoError(t, repo.SetActive(admin.ID, false))

	got, err = repo.GetByID(admin.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
	require.NotNil(t, got.LastLogin)
	require.True(t, at.Equal(*got.LastLogin))

	require.ErrorIs(t, repo.SetActive(9999, true), ErrAdminNotFound)

	count, err := repo.Count()
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestSessionRepo(t *testing.T) {
	openTestDB(t)
	admin := &models.AdminAccount{Username: "admin", PasswordHash: "x", IsActive: true}
	require.NoError(t, NewAdminRepo().Create(admin))

	repo := NewSessionRepo()
	token, session, err := repo.Create(admin.ID, "127.0.0.1", "test", time.Hour)
	require.NoError(t, err)
	require.Len(t, token, 64)
	require.NotEqual(t, token, session.TokenHash)

	got, err := repo.GetByToken(token)
	require.NoError(t, err)
	require.Equal(t, session.ID, got.ID)

	_, err = repo.GetByToken("not-a-token")
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Expired sessions are reported and removed
	expiredToken, _, err := repo.Create(admin.ID, "", "", -time.Minute)
	require.NoError(t, err)
	_, err = repo.GetByToken(expiredToken)
	require.ErrorIs(t, err, ErrSessionExpired)
	_, err = repo.GetByToken(expiredToken)
	require.ErrorIs(t, err, ErrSessionNotFound)

	sessions, err := repo.GetByAdminID(admin.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	require.ErrorIs(t, repo.DeleteForAdmin(admin.ID+1, session.ID), ErrSessionNotFound)
	require.NoError(t, repo.DeleteForAdmin(admin.ID, session.ID))
	_, err = repo.GetByToken(token)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, repo.DeleteByToken(token), ErrSessionNotFound)
}

func TestSessionDeleteExpired(t *testing.T) {
	openTestDB(t)
	admin := &models.AdminAccount{Username: "admin", PasswordHash: "x", IsActive: true}
	require.NoError(t, NewAdminRepo().Create(admin))

	repo := NewSessionRepo()
	_, _, err := repo.Create(admin.ID, "", "", -time.Hour)
	require.NoError(t, err)
	live, _, err := repo.Create(admin.ID, "", "", time.Hour)
	require.NoError(t, err)

	n, err := repo.DeleteExpired()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = repo.GetByToken(live)
	require.NoError(t, err)
}

func TestAnnouncementRepoOrderingAndReplace(t *testing.T) {
	openTestDB(t)
	repo := NewAnnouncementRepo()

	list, err := repo.List()
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)

	for _, a := range []*models.Announcement{
		{ID: "old", Title: "Old", Description: "d", Category: models.AnnouncementNotice, Date: "2024-03-10"},
		{ID: "new", Title: "New", Description: "d", Category: models.AnnouncementEvent, Date: "2024-03-20", Images: []string{"u1", "u2"}},
		{ID: "mid", Title: "Mid", Description: "d", Category: models.AnnouncementHealth, Date: "2024-03-15"},
	} {
		require.NoError(t, repo.Create(a))
	}

	list, err = repo.List()
	require.NoError(t, err)
	require.Equal(t, []string{"new", "mid", "old"}, []string{list[0].ID, list[1].ID, list[2].ID})
	require.Equal(t, []string{"u1", "u2"}, list[0].Images)
	require.Equal(t, []string{}, list[1].Images)

	latest, err := repo.Latest(2)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	before, err := repo.GetByID("new")
	require.NoError(t, err)

	replacement := &models.Announcement{ID: "new", Title: "Renamed", Description: "x", Category: models.AnnouncementGeneral, Date: "2024-01-01"}
	require.NoError(t, repo.Update(replacement))

	after, err := repo.GetByID("new")
	require.NoError(t, err)
	require.Equal(t, "Renamed", after.Title)
	require.Equal(t, []string{}, after.Images)
	require.True(t, before.CreatedAt.Equal(after.CreatedAt))

	require.ErrorIs(t, repo.Update(&models.Announcement{ID: "missing"}), ErrNotFound)
	require.NoError(t, repo.Delete("old"))
	require.ErrorIs(t, repo.Delete("old"), ErrNotFound)
	_, err = repo.GetByID("old")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGalleryRepo(t *testing.T) {
	openTestDB(t)
	repo := NewGalleryRepo()

	item := &models.GalleryItem{ID: "g1", Title: "Clean-up", Image: "https://cdn/x.jpg", Date: "2024-03-15", Category: models.GalleryCommunity}
	require.NoError(t, repo.Create(item))

	item.Title = "Clean-up drive"
	require.NoError(t, repo.Update(item))

	items, err := NewPublicGalleryRepo().List()
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Clean-up drive", items[0].Title)
	require.Equal(t, models.GalleryCommunity, items[0].Category)

	require.NoError(t, repo.Delete("g1"))
	require.ErrorIs(t, repo.Delete("g1"), ErrNotFound)
}

func TestProjectRepo(t *testing.T) {
	openTestDB(t)
	repo := NewProjectRepo()

	garden := &models.Project{ID: "p1", Title: "Community Garden", Description: "Gardens for every purok", Status: models.ProjectPlanning}
	require.NoError(t, repo.Create(garden))
	time.Sleep(5 * time.Millisecond)
	literacy := &models.Project{ID: "p2", Title: "Digital Literacy", Description: "Computer classes", Status: models.ProjectOngoing, Budget: "PHP 40,000.00"}
	require.NoError(t, repo.Create(literacy))

	garden.Status = models.ProjectCompleted
	garden.Impact = "Fresh produce for 200 residents"
	require.NoError(t, repo.Update(garden))

	projects, err := NewPublicProjectRepo().List()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, "p2", projects[0].ID)
	require.Equal(t, models.ProjectCompleted, projects[1].Status)
	require.Equal(t, "Fresh produce for 200 residents", projects[1].Impact)

	_, err = repo.GetByID("missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, repo.Update(&models.Project{ID: "missing"}), ErrNotFound)
	require.Error(t, NewPublicProjectRepo().Delete("p1"))
	require.NoError(t, repo.Delete("p1"))
	require.ErrorIs(t, repo.Delete("p1"), ErrNotFound)
}

func TestGrievanceRepo(t *testing.T) {
	openTestDB(t)
	repo := NewGrievanceRepo()

	g := &models.Grievance{
		ID: "gr1", FullName: "Juan Dela Cruz", Address: "Purok 1", Contact: "0917",
		Category: models.GrievanceComplaint, Subject: "Streetlight", Details: "Broken since May",
		PreferredContact: models.ContactPhone, Status: models.GrievanceNew, SubmittedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(g))

	require.NoError(t, repo.UpdateStatus("gr1", models.GrievanceResolved))
	require.ErrorIs(t, repo.UpdateStatus("nope", models.GrievanceResolved), ErrNotFound)

	resolved, err := repo.List(models.GrievanceResolved)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.Empty(t, resolved[0].Email)

	fresh, err := repo.List(models.GrievanceNew)
	require.NoError(t, err)
	require.Empty(t, fresh)

	require.NoError(t, repo.Delete("gr1"))
	require.ErrorIs(t, repo.Delete("gr1"), ErrNotFound)
}

func TestSettingsAndAudit(t *testing.T) {
	openTestDB(t)

	site, err := NewPublicSettingsRepo().GetPrefix("site.")
	require.NoError(t, err)
	require.Len(t, site, len(models.SiteKeys))
	require.NotEmpty(t, site[models.SiteHeroTitle])

	require.NoError(t, NewSettingsRepo().SetMany(map[string]string{models.SiteContactPhone: "+63 2 1234 5678"}))
	v, err := NewSettingsRepo().Get(models.SiteContactPhone)
	require.NoError(t, err)
	require.Equal(t, "+63 2 1234 5678", v)

	audit := NewAuditRepo()
	require.NoError(t, audit.Log(0, "", models.ActionLogin, "admin", map[string]string{"result": "ok"}, "127.0.0.1"))
	require.NoError(t, audit.Log(0, "", models.ActionGalleryCreate, "g1", nil, "127.0.0.1"))

	logs, total, err := audit.List(models.AuditFilter{ActionPrefix: "gallery.", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, models.ActionGalleryCreate, logs[0].Action)
	require.Zero(t, logs[0].AdminID)
}
