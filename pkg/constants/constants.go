package constants

// DeploymentStatus 站点部署状态，organizations.deployment_status 与 deployments.status 共用
const (
	DeploymentStatusCreated  = "created"  // 项目已创建，未触发构建
	DeploymentStatusBuilding = "building" // 构建中
	DeploymentStatusReady    = "ready"
	DeploymentStatusError    = "error"
	DeploymentStatusCanceled = "canceled"
)

// 托管平台上报的构建状态
const (
	PlatformStateQueued       = "QUEUED"
	PlatformStateInitializing = "INITIALIZING"
	PlatformStateBuilding     = "BUILDING"
	PlatformStateReady        = "READY"
	PlatformStateError        = "ERROR"
	PlatformStateCanceled     = "CANCELED"
)

// 组织类型
const (
	OrgTypePlatform = "platform"
	OrgTypeGeneral  = "general"
	OrgTypeTenant   = "tenant"
)

// 用户角色
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// 操作日志动作
const (
	ActivityActionDeployed = "deployed"
)

// 环境变量类型
const (
	EnvTypePlain     = "plain"
	EnvTypeEncrypted = "encrypted"
)

// 环境变量生效范围
var EnvTargets = []string{"production", "preview", "development"}

// 锁 key 前缀
const LockKeyDeployPrefix = "deploy:"

// Gin Context key
const (
	CtxKeyCaller    = "caller"
	CtxKeyRequestID = "request_id"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
	HeaderRequestID     = "X-Request-ID"
)
