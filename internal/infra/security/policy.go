package security

// Policy diz o que o ambiente exige das rotas protegidas.
type Policy struct {
	RequireAuth  bool
	EnforceRoles bool
}

var policies = map[string]Policy{
	"development": {RequireAuth: false, EnforceRoles: false},
	"staging":     {RequireAuth: true, EnforceRoles: true},
	"production":  {RequireAuth: true, EnforceRoles: true},
}

// PolicyFor devolve a política do ambiente; ambiente desconhecido cai na mais restrita.
func PolicyFor(env string) Policy {
	if p, ok := policies[env]; ok {
		return p
	}
	return Policy{RequireAuth: true, EnforceRoles: true}
}
