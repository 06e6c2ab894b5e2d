package access

// RoleCredential is the credential of a role inside a contract, like the
// authority of the proofs or the admin of the audit.
//
// - implements access.Credential
type RoleCredential struct {
	contract string
	role     string
}

// NewRoleCreds returns the credential of the role of the contract.
func NewRoleCreds(contract, role string) RoleCredential {
	return RoleCredential{
		contract: contract,
		role:     role,
	}
}

// GetID implements access.Credential. It returns the name of the contract.
func (c RoleCredential) GetID() []byte {
	return []byte(c.contract)
}

// GetRule implements access.Credential.
func (c RoleCredential) GetRule() string {
	return Compile(c.contract, c.role)
}

// String implements fmt.Stringer.
func (c RoleCredential) String() string {
	return c.role + " of " + c.contract
}
