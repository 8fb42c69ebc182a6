package filter

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var ErrMissingDate = errors.New("missing publication date")

// Буквенные зоны из RFC 2822 (obs-zone) и несколько европейских, которые встречаются в лентах.
// time.Parse и dateparse не знают их смещений и молча считают нулевыми
var zoneOffsets = map[string]string{
	"UT":   "+0000",
	"UTC":  "+0000",
	"GMT":  "+0000",
	"Z":    "+0000",
	"AST":  "-0400",
	"ADT":  "-0300",
	"EST":  "-0500",
	"EDT":  "-0400",
	"CST":  "-0600",
	"CDT":  "-0500",
	"MST":  "-0700",
	"MDT":  "-0600",
	"PST":  "-0800",
	"PDT":  "-0700",
	"WET":  "+0000",
	"WEST": "+0100",
	"BST":  "+0100",
	"CET":  "+0100",
	"CEST": "+0200",
	"EET":  "+0200",
	"EEST": "+0300",
	"MSK":  "+0300",
}

// ParsePublished разбирает дату публикации из ленты.
// Сначала RFC 2822 (так пишут почти все RSS), потом все остальное через dateparse.
// Дата без зоны считается UTC, результат всегда в UTC
func ParsePublished(raw string) (time.Time, error) {
	raw = numericZone(strings.TrimSpace(raw))
	if raw == "" {
		return time.Time{}, ErrMissingDate
	}

	if t, err := mail.ParseDate(raw); err == nil {
		return t.UTC(), nil
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}

	return t.UTC(), nil
}

// Заменяет буквенную зону в конце строки на числовое смещение
func numericZone(raw string) string {
	idx := strings.LastIndexByte(raw, ' ')
	if idx < 0 {
		return raw
	}

	offset, ok := zoneOffsets[strings.ToUpper(raw[idx+1:])]
	if !ok {
		return raw
	}

	return raw[:idx+1] + offset
}
