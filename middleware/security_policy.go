package middleware

import (
	"net/http"

	"github.com/upb/schoolms-api/models"
)

// PublicPaths are reachable without a token
var PublicPaths = []string{
	"/api/health",
	"/api/health/**",
	"/api/auth/validate-school",
	"/api/auth/login",
	"/api/auth/register",
	"/api/password-reset/request",
	"/api/password-reset/verify",
	"/api/password-reset/reset",
	"/api/self-service/**",
	"/api/payments/webhook",
	"/v3/api-docs",
	"/v3/api-docs/**",
	"/swagger-ui/**",
	"/swagger-ui.html",
}

// DefaultAccessRules returns the role-gated path groups in evaluation order
func DefaultAccessRules() []AccessRule {
	staff := []models.UserRole{
		models.RoleClassTeacher,
		models.RoleSubjectTeacher,
		models.RoleSchoolAdmin,
		models.RoleSuperAdmin,
	}
	admins := []models.UserRole{models.RoleSchoolAdmin, models.RoleSuperAdmin}

	return []AccessRule{
		{
			Patterns: []string{"/api/platform-admin/**", "/api/feature-management/**", "/api/subscription-plans/**"},
			Roles:    []models.UserRole{models.RoleSuperAdmin},
		},
		{
			Patterns: []string{"/api/schools/*/settings"},
			Roles:    admins,
		},
		{
			Methods:  []string{http.MethodPost},
			Patterns: []string{"/api/students", "/api/students/**", "/api/teachers/**", "/api/classes/**"},
			Roles:    admins,
		},
		{
			Patterns: []string{"/api/attendance/**", "/api/grades/**"},
			Roles:    staff,
		},
		{
			Patterns: []string{"/api/student-portal/**"},
			Roles:    []models.UserRole{models.RoleStudent},
		},
		{
			Patterns: []string{"/api/parent-portal/**"},
			Roles:    []models.UserRole{models.RoleParent},
		},
		{
			Patterns: []string{"/api/class-teacher-portal/**"},
			Roles:    []models.UserRole{models.RoleClassTeacher},
		},
		{
			Patterns: []string{"/api/subject-teacher-portal/**"},
			Roles:    []models.UserRole{models.RoleSubjectTeacher},
		},
	}
}
