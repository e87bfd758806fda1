package conversation

import (
	"regexp"
	"strings"
)

// bookingIntentPatterns matches messages that try to start a reservation.
var bookingIntentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(reservar|reserva|agendar|agenda|tomar|sacar)\b.*\b(hora|sesion|sesión|cita)\b`),
	regexp.MustCompile(`(?i)\b(quiero|me\s+gustar[ií]a|puedo|necesito)\b.*\b(reservar|agendar|tomar)\b`),
	regexp.MustCompile(`(?i)\bc[oó]mo\b.*\b(tomo|reservo|agendo)\b`),
	regexp.MustCompile(`(?i)\b(book|reserve|schedule)\b.*\b(session|appointment|slot|time)\b`),
	regexp.MustCompile(`(?i)\b(want|like)\s+to\s+book\b`),
}

var affirmativeRE = regexp.MustCompile(`(?i)^\s*(s[ií]|yes|confirmo|confirmar|confirmado|correcto|exacto|dale|ok|okay|perfecto|claro|por supuesto)\b`)

var negativeRE = regexp.MustCompile(`(?i)^\s*(no|nop|incorrecto|cambiar|corregir|est[aá]\s+mal)\b`)

var cancelRE = regexp.MustCompile(`(?i)\b(cancelar|cancela|olv[ií]dalo|mejor\s+no|no\s+quiero\s+reservar|d[ée]jalo)\b`)

// IsBookingIntent reports whether a message is trying to start or ask about
// a reservation.
func IsBookingIntent(message string) bool {
	message = strings.TrimSpace(message)
	if message == "" {
		return false
	}
	for _, pat := range bookingIntentPatterns {
		if pat.MatchString(message) {
			return true
		}
	}
	return false
}

// IsAffirmative reports whether a message confirms the pending summary.
func IsAffirmative(message string) bool {
	return affirmativeRE.MatchString(message)
}

// IsNegative reports whether a message rejects the pending summary.
func IsNegative(message string) bool {
	return negativeRE.MatchString(message)
}

// IsCancellation reports whether a message abandons the booking dialog.
func IsCancellation(message string) bool {
	return cancelRE.MatchString(message)
}
