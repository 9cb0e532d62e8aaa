package auth

import "github.com/dmitrijs2005/itemkeeper/internal/common"

// tokenBytes is 256 bits of entropy per opaque token.
const tokenBytes = 32

// GenerateRefreshToken returns a random hex token. It carries no claims;
// its only meaning is the row it is stored on.
func GenerateRefreshToken() (string, error) {
	return common.MakeRandHexString(tokenBytes)
}

// GenerateResetToken returns a random hex password-reset token.
func GenerateResetToken() (string, error) {
	return common.MakeRandHexString(tokenBytes)
}
