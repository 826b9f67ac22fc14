package rbac

const (
	RoleClinician = "clinician"
	RoleReviewer  = "reviewer"
	RoleAdmin     = "admin"
)

// Default policy. Norm lookups are public; dossiers hold examinee data.
var RolePermissions = map[string][]string{
	RoleClinician: {
		"norms:view",
		"dossier:create",
		"dossier:view",
		"dossier:score",
	},
	RoleReviewer: {
		"norms:view",
		"dossier:view",
		"dossier:score",
	},
	RoleAdmin: {
		"*", // everything
	},
}
