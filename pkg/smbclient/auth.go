package smbclient

import (
	"encoding/hex"
	"fmt"

	"github.com/hirochachacha/go-smb2"
)

// Credentials authenticate an SMB session. Hash, when set, is an NTLM hash
// in hex and takes precedence over Password.
type Credentials struct {
	User     string
	Password string
	Domain   string
	Hash     string
}

// Initiator builds the NTLM initiator for c.
// Note: Kerberos is not offered; go-smb2's Initiator interface is sealed.
func (c Credentials) Initiator() (*smb2.NTLMInitiator, error) {
	if c.Hash != "" {
		hashBytes, err := hex.DecodeString(c.Hash)
		if err != nil {
			return nil, fmt.Errorf("invalid ntlm hash format: %v", err)
		}
		return &smb2.NTLMInitiator{
			User:   c.User,
			Domain: c.Domain,
			Hash:   hashBytes,
		}, nil
	}

	return &smb2.NTLMInitiator{
		User:     c.User,
		Password: c.Password,
		Domain:   c.Domain,
	}, nil
}
