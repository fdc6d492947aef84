package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"tenant-deployer/internal/pkg/config"
	"tenant-deployer/internal/pkg/hosting/api"
)

func TestBuildSiteEnv(t *testing.T) {
	vars := BuildSiteEnv(config.SiteEnvConfig{
		DataStoreURL:        "https://store",
		DataStoreServiceKey: "secret",
		StripeSecretKey:     "sk_live",
	}, "org-1", "Acme", "https://acme-org-1.vercel.app")

	byKey := lo.KeyBy(vars, func(v api.EnvVar) string { return v.Key })

	assert.Len(t, vars, 8)
	assert.Equal(t, "https://store", byKey[EnvDataStoreURL].Value)
	assert.Equal(t, "plain", byKey[EnvDataStoreURL].Type)
	assert.Equal(t, "encrypted", byKey[EnvDataStoreServiceKey].Type)
	assert.Equal(t, "org-1", byKey[EnvTenantID].Value)
	assert.Equal(t, "https://acme-org-1.vercel.app", byKey[EnvBaseURL].Value)
	assert.Equal(t, "Acme", byKey[EnvSiteName].Value)
	assert.Equal(t, "encrypted", byKey[EnvStripeSecretKey].Type)
	assert.NotContains(t, byKey, EnvTwilioAccountSID)
	assert.NotContains(t, byKey, EnvMongoDBURI)

	for _, v := range vars {
		assert.Equal(t, []string{"production", "preview", "development"}, v.Target)
	}
}
