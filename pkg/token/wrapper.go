package token

import "agri_market_service/pkg/config"

// Overridable in tests.
var (
	GenerateJWTFunc = GenerateJWT
	ParseJWTFunc    = ParseJWT
)

// GenerateJWTWrapper issues a token for the member service, indirected so
// unit tests can swap the implementation.
func GenerateJWTWrapper(memberID, role string) (string, error) {
	return GenerateJWTFunc(memberID, role, config.EnvConfig.MemberService)
}

// ParseJWTWrapper parses a token through the overridable ParseJWTFunc.
func ParseJWTWrapper(t string) (*Claims, error) {
	return ParseJWTFunc(t)
}
