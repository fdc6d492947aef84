package auth

import "strings"

// Role 内置角色
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleUser        Role = "user"
	RoleSiteCreator Role = "site_creator" // 由 profile.is_site_creator 派生
)

// Permission 内置权限
type Permission string

const (
	PermSiteDeploy  Permission = "site:deploy"
	PermSiteView    Permission = "site:view"
	PermTenantCross Permission = "tenant:cross" // 跨组织操作
)

// RolePermissions 每个角色拥有的权限集合
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		"*:view",
		"tenant:*",
	},
	RoleUser: {
		"site:view",
	},
	RoleSiteCreator: {
		"site:*",
	},
}

// RolesOf 根据 profile 字段得到角色列表
func RolesOf(role string, isSiteCreator bool) []string {
	roles := []string{role}
	if isSiteCreator {
		roles = append(roles, string(RoleSiteCreator))
	}
	return roles
}

// Allow 判断一组角色是否包含所需权限，支持通配符
func Allow(roles []string, need Permission) bool {
	permissions := collectPermissions(roles)

	return len(permissions) > 0 && allow(permissions, need)
}

func collectPermissions(roles []string) []Permission {
	perms := make([]Permission, 0)
	for _, r := range roles {
		if ps, ok := RolePermissions[Role(r)]; ok {
			perms = append(perms, ps...)
		}
	}
	return perms
}

func allow(have []Permission, need Permission) bool {
	for _, p := range have {
		if match(p, need) {
			return true
		}
	}
	return false
}

// match 逐段比较，"*" 匹配单段；末尾 "*" 匹配剩余所有段
func match(p, need Permission) bool {
	if p == "*" || p == need {
		return true
	}

	allowed := strings.Split(string(p), ":")
	required := strings.Split(string(need), ":")

	for i, seg := range allowed {
		if i >= len(required) {
			return false
		}
		if seg == "*" {
			if i == len(allowed)-1 {
				return true
			}
			continue
		}
		if seg != required[i] {
			return false
		}
	}
	return len(allowed) == len(required)
}
