package auth

import (
	"github.com/olegkuprianov/webapp-starter/internal/models"
)

// Permission tags required by endpoints.
const (
	PermUser      = "user_permissions"
	PermSuperuser = "superuser_permissions"
	PermAdmin     = "admin_permissions"
)

// Well-known principals.
const (
	Everyone      = "system.Everyone"
	Authenticated = "system.Authenticated"
)

// Rule grants (or denies) a set of permissions to one principal.
type Rule struct {
	Principal   string
	Permissions []string
	All         bool // grants any permission
	Deny        bool
}

// ACL is the application's access control list. Rules are evaluated in
// order; the first rule whose principal matches and whose permission
// set covers the requested permission decides. The terminal rule denies
// everyone everything.
var ACL = []Rule{
	{Principal: Authenticated, Permissions: []string{PermUser}},
	{Principal: "role:" + models.RoleSuperuser, Permissions: []string{PermSuperuser, PermUser}},
	{Principal: "role:" + models.RoleAdmin, All: true},
	{Principal: Everyone, All: true, Deny: true},
}

// Permits reports whether the ACL grants the permission to any of the
// given principals. No matching rule means deny.
func Permits(principals []string, permission string) bool {
	for _, rule := range ACL {
		if !contains(principals, rule.Principal) {
			continue
		}
		if !rule.All && !contains(rule.Permissions, permission) {
			continue
		}
		return !rule.Deny
	}
	return false
}

// PermissionsFor returns every permission the ACL grants to the given
// principals, in declaration order.
func PermissionsFor(principals []string) []string {
	var out []string
	for _, rule := range ACL {
		if rule.Deny || !contains(principals, rule.Principal) {
			continue
		}
		perms := rule.Permissions
		if rule.All {
			perms = []string{PermUser, PermSuperuser, PermAdmin}
		}
		for _, p := range perms {
			if !contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// RolesFor maps a resolved userid to role principals. Returns nil
// (anonymous) when there is no current user or the user's normalized
// email does not equal the userid.
func RolesFor(userid string, user *models.UserDB) []string {
	if user == nil || !models.EmailsEqual(user.Email, userid) {
		return nil
	}
	return []string{"role:" + user.Role}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
