package service

import (
	"tenant-deployer/internal/pkg/config"
	"tenant-deployer/internal/pkg/hosting/api"
	"tenant-deployer/pkg/constants"
)

// 租户站点读取的环境变量名
const (
	EnvDataStoreURL        = "NEXT_PUBLIC_SUPABASE_URL"
	EnvDataStoreAnonKey    = "NEXT_PUBLIC_SUPABASE_ANON_KEY"
	EnvDataStoreProjectID  = "NEXT_PUBLIC_SUPABASE_PROJECT_ID"
	EnvDataStoreServiceKey = "SUPABASE_SERVICE_ROLE_KEY"
	EnvTenantID            = "NEXT_PUBLIC_TENANT_ID"
	EnvBaseURL             = "NEXT_PUBLIC_BASE_URL"
	EnvSiteName            = "NEXT_PUBLIC_SITE_NAME"
	EnvTwilioAccountSID    = "TWILIO_ACCOUNT_SID"
	EnvTwilioAuthToken     = "TWILIO_AUTH_TOKEN"
	EnvMongoDBURI          = "MONGODB_URI"
	EnvStripeSecretKey     = "STRIPE_SECRET_KEY"
)

// maxSiteEnvVars 必选 7 个加可选 4 个
const maxSiteEnvVars = 11

// BuildSiteEnv 生成推送到托管项目的环境变量；可选项仅在本服务配置了值时下发
func BuildSiteEnv(cfg config.SiteEnvConfig, organizationID, siteName, baseURL string) []api.EnvVar {
	vars := []api.EnvVar{
		envVar(EnvDataStoreURL, cfg.DataStoreURL, constants.EnvTypePlain),
		envVar(EnvDataStoreAnonKey, cfg.DataStoreAnonKey, constants.EnvTypePlain),
		envVar(EnvDataStoreProjectID, cfg.DataStoreProjectID, constants.EnvTypePlain),
		envVar(EnvDataStoreServiceKey, cfg.DataStoreServiceKey, constants.EnvTypeEncrypted),
		envVar(EnvTenantID, organizationID, constants.EnvTypePlain),
		envVar(EnvBaseURL, baseURL, constants.EnvTypePlain),
		envVar(EnvSiteName, siteName, constants.EnvTypePlain),
	}

	optional := []struct {
		key   string
		value string
	}{
		{EnvTwilioAccountSID, cfg.TwilioAccountSID},
		{EnvTwilioAuthToken, cfg.TwilioAuthToken},
		{EnvMongoDBURI, cfg.MongoDBURI},
		{EnvStripeSecretKey, cfg.StripeSecretKey},
	}
	for _, o := range optional {
		if o.value != "" {
			vars = append(vars, envVar(o.key, o.value, constants.EnvTypeEncrypted))
		}
	}

	return vars
}

func envVar(key, value, typ string) api.EnvVar {
	targets := make([]string, len(constants.EnvTargets))
	copy(targets, constants.EnvTargets)
	return api.EnvVar{Key: key, Value: value, Target: targets, Type: typ}
}
