package authz

const (
	RoleAdmin     = "admin"
	RoleManager   = "gerente"
	RoleFinance   = "financeiro"
	RoleStudent   = "aluno"
	RoleAnonymous = "anonymous"
)

const (
	ActionRead  = "read"
	ActionWrite = "write"
)

const (
	ObjectRoster    = "roster"
	ObjectFinance   = "finance"
	ObjectPayouts   = "payouts"
	ObjectMessaging = "messaging"
	ObjectSettings  = "settings"
	ObjectReports   = "reports"
)

// Objects lists every protected area.
var Objects = []string{ObjectRoster, ObjectFinance, ObjectPayouts, ObjectMessaging, ObjectSettings, ObjectReports}

// DefaultPolicy returns the built-in rules, valid in every tenant.
func DefaultPolicy() [][]string {
	grants := map[string]map[string][]string{
		RoleAdmin: {},
		RoleManager: {
			ObjectRoster:    {ActionRead, ActionWrite},
			ObjectFinance:   {ActionRead, ActionWrite},
			ObjectPayouts:   {ActionRead},
			ObjectMessaging: {ActionRead, ActionWrite},
			ObjectSettings:  {ActionRead},
			ObjectReports:   {ActionRead},
		},
		RoleFinance: {
			ObjectRoster:    {ActionRead},
			ObjectFinance:   {ActionRead, ActionWrite},
			ObjectPayouts:   {ActionRead, ActionWrite},
			ObjectMessaging: {ActionRead, ActionWrite},
			ObjectSettings:  {ActionRead},
			ObjectReports:   {ActionRead},
		},
	}
	for _, obj := range Objects {
		grants[RoleAdmin][obj] = []string{ActionRead, ActionWrite}
	}

	var rules [][]string
	for _, role := range []string{RoleAdmin, RoleManager, RoleFinance} {
		for _, obj := range Objects {
			for _, act := range grants[role][obj] {
				rules = append(rules, []string{SubjectFromRole(role), "*", obj, act})
			}
		}
	}
	return rules
}
