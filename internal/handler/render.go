package handler

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"credflow/internal/domain"
	"credflow/internal/stability"
	"credflow/internal/workflow"
)

const resetPayloadPrefix = "reset_"

// parseResetParams turns a /start or /reset payload into query params.
// Accepted forms: "reset_<token>", "token=<token>" and a bare token.
func parseResetParams(payload string) url.Values {
	payload = strings.TrimSpace(payload)
	switch {
	case payload == "":
		return url.Values{}
	case strings.HasPrefix(payload, resetPayloadPrefix):
		return url.Values{workflow.TokenParam: {strings.TrimPrefix(payload, resetPayloadPrefix)}}
	case strings.Contains(payload, "="):
		params, err := url.ParseQuery(payload)
		if err != nil {
			return url.Values{}
		}
		return params
	default:
		return url.Values{workflow.TokenParam: {payload}}
	}
}

// isResetPayload reports whether a /start payload opens the change-password dialog
func isResetPayload(payload string) bool {
	return strings.HasPrefix(strings.TrimSpace(payload), resetPayloadPrefix)
}

func mark(v *bool) string {
	switch {
	case v == nil:
		return "▫️"
	case *v:
		return "✅"
	default:
		return "❌"
	}
}

// renderStability formats a strength report as a checklist
func renderStability(s domain.PasswordStability) string {
	var b strings.Builder
	b.WriteString("Надёжность пароля:\n")
	fmt.Fprintf(&b, "%s есть цифра\n", mark(s.HasDigit))
	fmt.Fprintf(&b, "%s есть заглавная буква\n", mark(s.HasUppercase))
	fmt.Fprintf(&b, "%s не короче %d символов", mark(s.MeetsMinLength), stability.MinLength)
	return b.String()
}

// maskPassword hides password unless show is set
func maskPassword(password string, show bool) string {
	if show {
		return password
	}
	return strings.Repeat("•", utf8.RuneCountInString(password))
}
