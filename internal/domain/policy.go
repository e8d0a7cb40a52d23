package domain

import (
	"fmt"
	"strings"
)

// CheckDomainPolicy rejects identities whose email is absent, unverified, or
// outside the allowed domain. The suffix match is case-sensitive, comparing
// the email exactly as the provider issued it. This runs before any directory
// or roster call so rejected emails generate no upstream traffic.
func CheckDomainPolicy(claims IdentityClaims, allowedDomain string) error {
	if claims.Email == "" {
		return fmt.Errorf("identity has no email claim")
	}
	if !claims.EmailVerified {
		return fmt.Errorf("email %s is not verified by the provider", claims.Email)
	}
	if !strings.HasSuffix(claims.Email, "@"+allowedDomain) {
		return fmt.Errorf("email %s is outside the allowed domain %s", claims.Email, allowedDomain)
	}
	return nil
}
