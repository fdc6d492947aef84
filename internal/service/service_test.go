package service

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tenant-deployer/internal/adapter/notification"
	"tenant-deployer/internal/model"
	"tenant-deployer/internal/pkg/config"
	"tenant-deployer/internal/pkg/database"
	"tenant-deployer/internal/repository"
)

type env struct {
	db         *gorm.DB
	orgRepo    repository.OrganizationRepository
	recordRepo repository.DeploymentRecordRepository
	profiles   repository.ProfileRepository
	cfg        *config.Config
	events     *capturePublisher
}

type capturePublisher struct {
	events []*notification.Event
}

func (c *capturePublisher) Publish(e *notification.Event) {
	c.events = append(c.events, e)
}

func testConfig() *config.Config {
	return &config.Config{
		Hosting: config.HostingConfig{
			SiteDomain:        "vercel.app",
			Framework:         "nextjs",
			DefaultRepository: "https://github.com/acme/tenant-site",
			DefaultBranch:     "main",
		},
		SiteEnv: config.SiteEnvConfig{
			DataStoreURL:        "https://store.example.com",
			DataStoreAnonKey:    "anon",
			DataStoreProjectID:  "proj",
			DataStoreServiceKey: "service",
		},
		Core: config.CoreConfig{
			Deploy: config.DeployConfig{
				PropagationDelay: time.Millisecond,
				RetryDelay:       time.Millisecond,
				TriggerTimeout:   time.Second,
				LockTTL:          time.Minute,
			},
		},
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := database.OpenInMemory(model.AllModels()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	seed := []interface{}{
		&model.Organization{ID: "org-general-0001", Name: "General", Type: "general", CreatedByEmail: "root@platform.io"},
		&model.Organization{ID: "1234567890abcdef", Name: "Acme & Co", Type: "tenant", CreatedByEmail: "creator@general.io"},
		&model.Organization{ID: "foreign-org-0001", Name: "Foreign", Type: "tenant", CreatedByEmail: "someone@else.io"},
		&model.Profile{ID: "creator", Email: "creator@general.io", Role: "user", IsSiteCreator: true, OrganizationID: lo.ToPtr("org-general-0001")},
		&model.Profile{ID: "plain", Email: "plain@general.io", Role: "user", OrganizationID: lo.ToPtr("org-general-0001")},
		&model.Profile{ID: "admin", Email: "admin@platform.io", Role: "admin", IsSiteCreator: true},
		&model.Profile{ID: "member", Email: "member@acme.io", Role: "user", IsSiteCreator: true, OrganizationID: lo.ToPtr("1234567890abcdef")},
		&model.Profile{ID: "orphan", Email: "orphan@x.io", Role: "user", IsSiteCreator: true},
	}
	for _, row := range seed {
		require.NoError(t, db.Create(row).Error)
	}

	return &env{
		db:         db,
		orgRepo:    repository.NewOrganizationRepository(db),
		recordRepo: repository.NewDeploymentRecordRepository(db),
		profiles:   repository.NewProfileRepository(db),
		cfg:        testConfig(),
		events:     &capturePublisher{},
	}
}

func (e *env) org(t *testing.T, id string) *model.Organization {
	t.Helper()
	org, err := e.orgRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return org
}

func (e *env) profile(t *testing.T, id string) *model.Profile {
	t.Helper()
	p, err := e.profiles.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}
