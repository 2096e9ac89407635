package service

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lyceo/charge-api/internal/models"
)

// DSTParserService extracts structured exam records from the ragged plain
// text of planning documents, without any external service. Planning PDFs
// are visually tabular but extract as loose lines; line-level co-occurrence
// of class codes and subjects is a cheap proxy for "same table row".
type DSTParserService struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewDSTParserService constructs the extractor. The clock is injectable so
// the today-fallback for undated documents stays testable.
func NewDSTParserService(logger *zap.Logger, now func() time.Time) *DSTParserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &DSTParserService{logger: logger, now: now}
}

var frenchMonths = map[string]time.Month{
	"janvier": time.January, "fevrier": time.February, "mars": time.March,
	"avril": time.April, "mai": time.May, "juin": time.June,
	"juillet": time.July, "aout": time.August, "septembre": time.September,
	"octobre": time.October, "novembre": time.November, "decembre": time.December,
}

// knownSubjects is the recognition vocabulary including common synonyms;
// synonymous tokens collapse to one canonical label per family.
var knownSubjects = []string{
	"MATHEMATIQUES", "MATHS", "MATH",
	"PHYSIQUE-CHIMIE", "PHYSIQUE", "CHIMIE", "PC",
	"SVT", "SCIENCES DE LA VIE",
	"FRANCAIS", "FRANÇAIS", "LETTRES",
	"HISTOIRE-GEO", "HISTOIRE", "GEOGRAPHIE", "HG",
	"ANGLAIS", "ESPAGNOL", "ALLEMAND", "LV1", "LV2",
	"PHILOSOPHIE", "PHILO",
	"SES", "ECONOMIE",
	"NSI", "INFORMATIQUE",
	"EPS", "SPORT",
}

var subjectSynonyms = map[string]string{
	"MATHS": "MATHEMATIQUES", "MATH": "MATHEMATIQUES",
	"PC": "PHYSIQUE-CHIMIE",
	"HG": "HISTOIRE-GEO",
	"PHILO":    "PHILOSOPHIE",
	"FRANÇAIS": "FRANCAIS",
}

var (
	// Class codes follow the grade+section convention: 1A, 2B, TC.
	classPattern = regexp.MustCompile(`(?i)\b([12T][A-Z])\b`)
	timePattern  = regexp.MustCompile(`\b(\d{1,2})[h:.](\d{2})?\b`)
	textualDate  = regexp.MustCompile(`(?i)(\d{1,2})\s+(janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre)(?:\s+(\d{4}))?`)
	numericDate  = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})`)
	roomPattern  = regexp.MustCompile(`(?i)\bsalle\s*([A-Z]?\d{1,3}[A-Z]?)\b`)
)

type timeSlot struct {
	start string
	end   string
}

// Parse converts raw planning text into exam records. It is best effort and
// never fails on malformed input: missing dates fall back to today, missing
// classes or subjects yield an empty result.
func (s *DSTParserService) Parse(rawText string) []models.DST {
	lines := nonEmptyLines(rawText)

	mainDate := s.extractMainDate(rawText)
	classes := extractClasses(rawText)
	subjects := extractSubjects(rawText)
	slots := extractTimeSlots(rawText)
	room := extractRoom(rawText)

	if len(classes) == 0 || len(subjects) == 0 {
		s.logger.Warn("extraction found no usable structure",
			zap.Int("classes", len(classes)),
			zap.Int("subjects", len(subjects)),
		)
		return []models.DST{}
	}

	classOrder, proximity := buildProximityMap(lines, subjects)

	results := make([]models.DST, 0, len(classes)*len(subjects))
	for _, cls := range classOrder {
		for _, subject := range proximity[cls] {
			results = append(results, s.synthesize(cls, subject, mainDate, slots[0], room))
		}
	}

	// Proximity found nothing to associate; trade precision for completeness
	// with the full cross-product rather than returning nothing.
	if len(results) == 0 {
		s.logger.Info("proximity pass empty, using cross-product fallback",
			zap.Int("classes", len(classes)),
			zap.Int("subjects", len(subjects)),
		)
		for _, cls := range classes {
			for _, subject := range subjects {
				results = append(results, s.synthesize(cls, subject, mainDate, slots[0], room))
			}
		}
	}

	s.logger.Info("extraction finished", zap.Int("records", len(results)))
	return results
}

func (s *DSTParserService) synthesize(class, subject, date string, slot timeSlot, room string) models.DST {
	return models.DST{
		ID:        recordID(date, class, subject),
		Date:      date,
		Subject:   subject,
		Classes:   []string{strings.ToUpper(class)},
		StartTime: slot.start,
		EndTime:   slot.end,
		Room:      room,
		Source:    "smart_import",
	}
}

// recordID derives a stable identifier from record content so repeated
// imports of the same document are reproducible.
func recordID(date, class, subject string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s", date, strings.ToUpper(class), subject)
	return fmt.Sprintf("dst-%x", h.Sum64())
}

// extractMainDate finds the document's governing date: textual French form
// first, then numeric D/M/Y, then today.
func (s *DSTParserService) extractMainDate(text string) string {
	if m := textualDate.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := frenchMonths[stripAccents(strings.ToLower(m[2]))]
		if !ok {
			month = time.January
		}
		year := s.now().Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		return formatDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
	}

	if m := numericDate.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		return formatDate(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
	}

	s.logger.Warn("no date detected in document, defaulting to today")
	return formatDate(s.now())
}

// extractClasses returns class codes in first-seen order, deduplicated
// case-insensitively.
func extractClasses(text string) []string {
	seen := make(map[string]struct{})
	ordered := []string{}
	for _, m := range classPattern.FindAllString(text, -1) {
		code := strings.ToUpper(m)
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		ordered = append(ordered, code)
	}
	return ordered
}

// extractSubjects matches the fixed vocabulary case-insensitively and
// collapses synonyms to one canonical label each.
func extractSubjects(text string) []string {
	upper := strings.ToUpper(text)
	seen := make(map[string]struct{})
	ordered := []string{}
	for _, subject := range knownSubjects {
		if !strings.Contains(upper, subject) {
			continue
		}
		canonical := subject
		if c, ok := subjectSynonyms[subject]; ok {
			canonical = c
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		ordered = append(ordered, canonical)
	}
	return ordered
}

// extractTimeSlots pairs consecutive time tokens into (start, end) slots,
// defaulting to a single full morning when none are found.
func extractTimeSlots(text string) []timeSlot {
	times := []string{}
	for _, m := range timePattern.FindAllStringSubmatch(text, -1) {
		hours, _ := strconv.Atoi(m[1])
		if hours > 23 {
			continue
		}
		minutes := m[2]
		if minutes == "" {
			minutes = "00"
		}
		times = append(times, fmt.Sprintf("%02d:%s", hours, minutes))
	}

	slots := []timeSlot{}
	for i := 0; i+1 < len(times); i += 2 {
		slots = append(slots, timeSlot{start: times[i], end: times[i+1]})
	}
	if len(slots) == 0 {
		slots = append(slots, timeSlot{start: "08:00", end: "12:00"})
	}
	return slots
}

func extractRoom(text string) string {
	if m := roomPattern.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// buildProximityMap collects, per line, which subjects co-occur with which
// class codes, unioning subjects per class across all lines. Returned in
// first-seen class order to keep synthesis deterministic.
func buildProximityMap(lines []string, subjects []string) ([]string, map[string][]string) {
	order := []string{}
	result := make(map[string][]string)
	seen := make(map[string]map[string]struct{})

	for _, line := range lines {
		lineClasses := classPattern.FindAllString(line, -1)
		if len(lineClasses) == 0 {
			continue
		}
		upper := strings.ToUpper(line)
		lineSubjects := []string{}
		for _, subject := range subjects {
			if matchesSubject(upper, subject) {
				lineSubjects = append(lineSubjects, subject)
			}
		}
		for _, raw := range lineClasses {
			cls := strings.ToUpper(raw)
			if _, ok := seen[cls]; !ok {
				seen[cls] = make(map[string]struct{})
				order = append(order, cls)
			}
			for _, subject := range lineSubjects {
				if _, dup := seen[cls][subject]; dup {
					continue
				}
				seen[cls][subject] = struct{}{}
				result[cls] = append(result[cls], subject)
			}
		}
	}

	return order, result
}

// matchesSubject accepts the canonical label or any synonym mapping to it.
func matchesSubject(upperLine, canonical string) bool {
	if strings.Contains(upperLine, canonical) {
		return true
	}
	for synonym, target := range subjectSynonyms {
		if target == canonical && strings.Contains(upperLine, synonym) {
			return true
		}
	}
	return false
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

var accentReplacer = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a",
	"û", "u", "ù", "u",
	"î", "i", "ï", "i",
	"ô", "o", "ç", "c",
)

func stripAccents(s string) string {
	return accentReplacer.Replace(s)
}
