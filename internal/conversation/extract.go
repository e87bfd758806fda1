package conversation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/quantumvibe/booking-assistant/internal/schedule"
)

// ExtractedFields is the partial update produced by scanning one message.
// Empty string means the field was not found.
type ExtractedFields struct {
	Fecha    string
	Hora     string
	Nombre   string
	Telefono string
	Email    string
	Programa string
}

var (
	emailRE   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	isoDateRE = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	dayMonthRE = regexp.MustCompile(`(?i)\b(\d{1,2})\s+de\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)\b`)
	weekdayRE  = regexp.MustCompile(`(?i)\b(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	phoneRE    = regexp.MustCompile(`\+?\d[\d\s\-.()]{6,16}\d`)
	hhmmRE     = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	ampmRE     = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(a\.?m\.?|p\.?m\.?)`)
	bareHourRE = regexp.MustCompile(`\b(\d{1,2})\b`)
	nameRE     = regexp.MustCompile(`\p{Lu}[\p{L}']+(?:\s+\p{Lu}[\p{L}']+)+`)
	programaRE = regexp.MustCompile(`(?i)\b(descanso\s+profundo|concentraci[oó]n(?:\s+y\s+foco)?|creatividad)\b`)
)

var weekdaysByName = map[string]time.Weekday{
	"lunes": time.Monday, "martes": time.Tuesday, "miercoles": time.Wednesday,
	"jueves": time.Thursday, "viernes": time.Friday, "sabado": time.Saturday,
	"domingo": time.Sunday,
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

var monthsByName = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

// nameStopWords are capitalized multi-word phrases that show up in normal
// conversation but are never customer names.
var nameStopWords = []string{
	"quantumvibe", "cápsulas", "capsulas", "descanso", "concentración",
	"concentracion", "creatividad", "metro", "baquedano", "providencia",
}

// ExtractFields scans a message for booking fields. Matching is best effort:
// anything ambiguous is simply left empty so the dialog re-prompts. Matched
// spans are blanked before later passes so a date's numerals are not re-read
// as a time, or a phone number as anything else.
func ExtractFields(message string, now time.Time) ExtractedFields {
	var out ExtractedFields
	text := message

	text = extractEmail(text, &out)
	text = extractDate(text, now, &out)
	text = extractPhone(text, &out)
	text = extractTime(text, &out)
	text = extractPrograma(text, &out)
	extractName(text, &out)

	return out
}

func blank(text string, loc []int) string {
	return text[:loc[0]] + strings.Repeat(" ", loc[1]-loc[0]) + text[loc[1]:]
}

func extractEmail(text string, out *ExtractedFields) string {
	loc := emailRE.FindStringIndex(text)
	if loc == nil {
		return text
	}
	out.Email = strings.ToLower(text[loc[0]:loc[1]])
	return blank(text, loc)
}

func extractDate(text string, now time.Time, out *ExtractedFields) string {
	if loc := isoDateRE.FindStringIndex(text); loc != nil {
		raw := text[loc[0]:loc[1]]
		if d, err := schedule.ParseDate(raw); err == nil {
			out.Fecha = schedule.FormatDate(d)
			return blank(text, loc)
		}
	}

	if m := dayMonthRE.FindStringSubmatchIndex(text); m != nil {
		day, _ := strconv.Atoi(text[m[2]:m[3]])
		month, ok := monthsByName[normalizeToken(text[m[4]:m[5]])]
		if ok && day >= 1 && day <= 31 {
			candidate := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
			// A day/month already behind us means next year.
			if schedule.FormatDate(candidate) < schedule.FormatDate(now) {
				candidate = candidate.AddDate(1, 0, 0)
			}
			if candidate.Day() == day {
				out.Fecha = schedule.FormatDate(candidate)
				return blank(text, []int{m[0], m[1]})
			}
		}
	}

	if m := weekdayRE.FindStringIndex(text); m != nil {
		if wd, ok := weekdaysByName[normalizeToken(text[m[0]:m[1]])]; ok {
			out.Fecha = schedule.FormatDate(schedule.NextWeekday(now, wd))
			return blank(text, m)
		}
	}

	return text
}

func extractPhone(text string, out *ExtractedFields) string {
	for _, loc := range phoneRE.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		digits := keepDigits(raw)
		normalized, ok := normalizePhone(digits, strings.HasPrefix(raw, "+"))
		if !ok {
			continue
		}
		out.Telefono = normalized
		return blank(text, loc)
	}
	return text
}

// normalizePhone maps national Chilean mobile forms to +569XXXXXXXX and
// accepts any explicit international number as typed.
func normalizePhone(digits string, hasPlus bool) (string, bool) {
	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "569"):
		return "+" + digits, true
	case len(digits) == 9 && strings.HasPrefix(digits, "9"):
		return "+56" + digits, true
	case hasPlus && len(digits) >= 9 && len(digits) <= 15:
		return "+" + digits, true
	default:
		return "", false
	}
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func extractTime(text string, out *ExtractedFields) string {
	if m := hhmmRE.FindStringSubmatchIndex(text); m != nil {
		hour, _ := strconv.Atoi(text[m[2]:m[3]])
		minute, _ := strconv.Atoi(text[m[4]:m[5]])
		candidate := text[m[0]:m[1]]
		if len(candidate) == 4 {
			candidate = "0" + candidate
		}
		if schedule.IsSlotTime(candidate) {
			out.Hora = candidate
			return blank(text, []int{m[0], m[1]})
		}
		if minute == 0 {
			if slot, ok := schedule.NearestSlot(hour); ok {
				out.Hora = slot
				return blank(text, []int{m[0], m[1]})
			}
		}
		return text
	}

	if m := ampmRE.FindStringSubmatchIndex(text); m != nil {
		hour, _ := strconv.Atoi(text[m[2]:m[3]])
		meridiem := strings.ToLower(text[m[4]:m[5]])
		if strings.HasPrefix(meridiem, "p") && hour < 12 {
			hour += 12
		}
		if strings.HasPrefix(meridiem, "a") && hour == 12 {
			hour = 0
		}
		if slot, ok := schedule.NearestSlot(hour); ok {
			out.Hora = slot
			return blank(text, []int{m[0], m[1]})
		}
		return text
	}

	if m := bareHourRE.FindStringSubmatchIndex(text); m != nil {
		hour, _ := strconv.Atoi(text[m[2]:m[3]])
		if slot, ok := schedule.NearestSlot(hour); ok {
			out.Hora = slot
			return blank(text, []int{m[0], m[1]})
		}
	}

	return text
}

func extractPrograma(text string, out *ExtractedFields) string {
	loc := programaRE.FindStringIndex(text)
	if loc == nil {
		return text
	}
	switch normalizeToken(strings.Fields(text[loc[0]:loc[1]])[0]) {
	case "descanso":
		out.Programa = "Descanso Profundo"
	case "concentracion":
		out.Programa = "Concentración y Foco"
	case "creatividad":
		out.Programa = "Creatividad"
	}
	return blank(text, loc)
}

func extractName(text string, out *ExtractedFields) {
	for _, candidate := range nameRE.FindAllString(text, -1) {
		if isPlausibleName(candidate) {
			out.Nombre = strings.Join(strings.Fields(candidate), " ")
			return
		}
	}
}

func isPlausibleName(candidate string) bool {
	lowered := strings.ToLower(candidate)
	for _, stop := range nameStopWords {
		if strings.Contains(lowered, stop) {
			return false
		}
	}
	return len(strings.Fields(candidate)) >= 2
}

func normalizeToken(s string) string {
	s = strings.ToLower(s)
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")
	return replacer.Replace(s)
}
